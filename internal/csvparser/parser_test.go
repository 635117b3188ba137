package csvparser

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ginjaninja78/production-sorter/internal/config"
	"github.com/ginjaninja78/production-sorter/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func defaultSettings() config.CSVSettings {
	return config.CSVSettings{Delimiter: ",", Encoding: "UTF-8"}
}

func TestParse_Basic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Production 01.csv")
	content := "PART_NBR,BIN_ID, TXN_QTY \n" +
		"100,A1,5\n" +
		"\n" +
		"\"200\",\"B, 2\",3\n" +
		"300,C3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	data, err := Parse(path, defaultSettings())
	require.NoError(t, err)

	assert.Equal(t, path, data.SourceFile)
	assert.Equal(t, []string{"PART_NBR", "BIN_ID", "TXN_QTY"}, data.Headers)
	require.Equal(t, 3, data.RowCount)
	assert.Equal(t, 3, data.ColumnCount)

	assert.Equal(t, "100", data.Rows[0]["PART_NBR"])
	assert.Equal(t, "B, 2", data.Rows[1]["BIN_ID"])
	assert.Equal(t, "", data.Rows[2]["TXN_QTY"], "short rows are padded with blanks")

	// Blank line 3 is skipped, so line numbers are 2, 4, 5.
	assert.Equal(t, []int{2, 4, 5}, data.LineNumbers)
}

func TestParse_FileNotFound(t *testing.T) {
	_, err := Parse(filepath.Join(t.TempDir(), "missing.csv"), defaultSettings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrFileNotFound))
	assert.False(t, errors.Is(err, types.ErrLoad))
}

func TestParse_EmptyFileIsLoadError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := Parse(path, defaultSettings())
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrLoad))
}

func TestParseReader_HeaderOnly(t *testing.T) {
	data, err := ParseReader(strings.NewReader("A,B\n"), defaultSettings())
	require.NoError(t, err)
	assert.Equal(t, 0, data.RowCount)
	assert.Empty(t, data.Rows)
}

func TestParseReader_Delimiters(t *testing.T) {
	tests := []struct {
		name      string
		delimiter string
		content   string
	}{
		{"pipe", "|", "A|B\n1|2\n"},
		{"pipe word", "pipe", "A|B\n1|2\n"},
		{"tab escaped", "\\t", "A\tB\n1\t2\n"},
		{"tab word", "tab", "A\tB\n1\t2\n"},
		{"semicolon", ";", "A;B\n1;2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ParseReader(strings.NewReader(tt.content), config.CSVSettings{Delimiter: tt.delimiter})
			require.NoError(t, err)
			require.Equal(t, 1, data.RowCount)
			assert.Equal(t, "1", data.Rows[0]["A"])
			assert.Equal(t, "2", data.Rows[0]["B"])
		})
	}
}

func TestParseReader_Encodings(t *testing.T) {
	t.Run("utf-8 bom stripped", func(t *testing.T) {
		data, err := ParseReader(strings.NewReader("\ufeffPART_NBR,PART_DESC\n1,x\n"), defaultSettings())
		require.NoError(t, err)
		assert.True(t, data.HasColumn("PART_NBR"))
	})

	t.Run("windows-1252", func(t *testing.T) {
		encoded, err := charmap.Windows1252.NewEncoder().String("PART_DESC\nCafé crème\n")
		require.NoError(t, err)

		data, err := ParseReader(bytes.NewReader([]byte(encoded)), config.CSVSettings{Encoding: "Windows-1252"})
		require.NoError(t, err)
		assert.Equal(t, "Café crème", data.Rows[0]["PART_DESC"])
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := ParseReader(strings.NewReader("A\n1\n"), config.CSVSettings{Encoding: "EBCDIC"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, types.ErrLoad))
	})
}

func TestCleanHeaders(t *testing.T) {
	assert.Equal(t,
		[]string{"A", "Column_2", "USER NAME"},
		cleanHeaders([]string{" A ", "", "USER NAME"}),
	)
}

func TestResolveColumn(t *testing.T) {
	data := &CSVData{Headers: []string{"USER NAME", "SUB_CODE"}}

	name, ok := data.ResolveColumn("USER_NAME", "USER NAME")
	assert.True(t, ok)
	assert.Equal(t, "USER NAME", name)

	name, ok = data.ResolveColumn("SUB_CODE", "SUB CODE")
	assert.True(t, ok)
	assert.Equal(t, "SUB_CODE", name)

	_, ok = data.ResolveColumn("APPLICATION")
	assert.False(t, ok)
}
