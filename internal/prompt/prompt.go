// Package prompt implements the interactive console dialogue: asking for an
// input file and asking whether to continue.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Messages shown to the operator.
const (
	FileNamePrompt  = "Please input your file name (without extension): "
	NotFoundMessage = "That file doesn't exist in the input folder. Please try again."
	AnotherPrompt   = "Process another file? (y/n): "
)

// Prompter reads answers from in and writes questions to out.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a Prompter.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// AskFileName asks for the input's base name. It returns io.EOF when input
// ends before a line is entered.
func (p *Prompter) AskFileName() (string, error) {
	return p.ask(FileNamePrompt)
}

// AskAnother asks whether to process another file. Only "y" or "yes"
// (any case) continue; end of input counts as no.
func (p *Prompter) AskAnother() bool {
	answer, err := p.ask(AnotherPrompt)
	if err != nil {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

// NotFound tells the operator the file does not exist.
func (p *Prompter) NotFound() {
	fmt.Fprintln(p.out, NotFoundMessage)
}

// LoadFailed reports any other load failure.
func (p *Prompter) LoadFailed(err error) {
	fmt.Fprintf(p.out, "An error occurred: %v. Please try again.\n", err)
}

// Say prints a line to the operator.
func (p *Prompter) Say(format string, args ...interface{}) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

func (p *Prompter) ask(question string) (string, error) {
	fmt.Fprint(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
