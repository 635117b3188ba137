package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskFileName(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("  Production 01  \nlast"), &out)

	name, err := p.AskFileName()
	require.NoError(t, err)
	assert.Equal(t, "Production 01", name)

	// A final line without newline is still accepted.
	name, err = p.AskFileName()
	require.NoError(t, err)
	assert.Equal(t, "last", name)

	_, err = p.AskFileName()
	assert.True(t, errors.Is(err, io.EOF))

	assert.Equal(t, strings.Repeat(FileNamePrompt, 3), out.String())
}

func TestAskAnother(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{" YES \n", true},
		{"n\n", false},
		{"no\n", false},
		{"yep\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			assert.Equal(t, tt.want, New(strings.NewReader(tt.input), &out).AskAnother())
			assert.Equal(t, AnotherPrompt, out.String())
		})
	}
}

func TestMessages(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader(""), &out)

	p.NotFound()
	p.LoadFailed(errors.New("bad quoting"))

	assert.Equal(t,
		NotFoundMessage+"\n"+"An error occurred: bad quoting. Please try again.\n",
		out.String())
}
