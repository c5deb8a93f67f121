package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// prompter asks the operator for confirmations.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine() string {
	// EOF and read errors count as an empty answer
	line, _ := p.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (p *prompter) confirm(prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	response := strings.ToLower(p.readLine())
	return response == "y" || response == "yes"
}

// confirmPhrase requires the exact phrase, case included.
func (p *prompter) confirmPhrase(phrase string) bool {
	fmt.Fprintf(p.out, "Type %q to confirm: ", phrase)
	return p.readLine() == phrase
}
