package term

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Prompter asks the user yes/no questions.
type Prompter struct {
	in        *bufio.Reader
	out       io.Writer
	assumeYes bool
}

// NewPrompter returns a Prompter reading the answers from in. With assumeYes
// every question is answered with yes without reading from in.
func NewPrompter(in io.Reader, out io.Writer, assumeYes bool) *Prompter {
	return &Prompter{
		in:        bufio.NewReader(in),
		out:       out,
		assumeYes: assumeYes,
	}
}

// Confirm writes the question and returns whether the answer is "y". Any other
// answer, including no answer at all, is a no.
func (p *Prompter) Confirm(question string, indent int) bool {
	fmt.Fprintf(p.out, "%s%s (y/n): ", padding(indent), question)

	if p.assumeYes {
		fmt.Fprintln(p.out, "y")
		return true
	}

	answer, err := p.in.ReadString('\n')
	if err != nil && len(answer) == 0 {
		fmt.Fprintln(p.out)
		return false
	}

	return strings.ToLower(strings.TrimSpace(answer)) == "y"
}
