package process

import (
	"strings"
	"time"
	"unicode"

	"github.com/cloudworx/setup/glob"
)

// Parser is an interface that is accepted by the runner for parsing the
// output of a command.
type Parser interface {
	// Parse parses and renders the given line. A blank line
	// is ignored.
	Parse(line []byte)

	// Printed returns the number of lines that have been rendered.
	Printed() uint64

	// Close terminates a pending progress line.
	Close()

	// ResetLog resets any collected logs. This is called
	// before the command starts.
	ResetLog()

	// Log returns a slice of collected log lines.
	Log() []Line
}

// Line represents a line from the output with its timestamp. The
// line doesn't include any newline character.
type Line struct {
	Timestamp time.Time
	Data      string
}

// Printer renders the output of a command.
type Printer interface {
	// Output renders a line of output. A progress line will be
	// overwritten by the next line.
	Output(line string, indent int, progress bool)

	// Newline advances to the next line.
	Newline()

	// Error renders a diagnostic message.
	Error(indent int, format string, args ...interface{})
}

type OutputParserConfig struct {
	Printer  Printer
	Indent   int
	Progress glob.Glob // Lines matching this pattern are progress lines. Nil means none.
}

type outputParser struct {
	printer  Printer
	indent   int
	progress glob.Glob

	inProgress bool
	printed    uint64
	log        []Line
}

// NewOutputParser returns a parser that renders each non-blank line with the
// printer. Consecutive progress lines overwrite each other. A regular line
// that follows a progress line starts on a new line.
func NewOutputParser(config OutputParserConfig) Parser {
	p := &outputParser{
		printer:  config.Printer,
		indent:   config.Indent,
		progress: config.Progress,
	}

	if p.printer == nil {
		p.printer = &nullPrinter{}
	}

	return p
}

func (p *outputParser) Parse(line []byte) {
	data := strings.TrimRightFunc(string(line), unicode.IsSpace)
	if len(strings.TrimSpace(data)) == 0 {
		return
	}

	p.log = append(p.log, Line{
		Timestamp: time.Now(),
		Data:      data,
	})

	p.printed++

	isProgress := p.progress != nil && p.progress.Match(strings.TrimSpace(data))

	if isProgress {
		p.inProgress = true
	} else if p.inProgress {
		p.inProgress = false
		p.printer.Newline()
	}

	p.printer.Output(data, p.indent, isProgress)
}

func (p *outputParser) Printed() uint64 {
	return p.printed
}

func (p *outputParser) Close() {
	if !p.inProgress {
		return
	}

	p.inProgress = false
	p.printer.Newline()
}

func (p *outputParser) ResetLog() {
	p.log = nil
	p.printed = 0
	p.inProgress = false
}

func (p *outputParser) Log() []Line {
	history := make([]Line, len(p.log))
	copy(history, p.log)

	return history
}

type nullPrinter struct{}

func (p *nullPrinter) Output(string, int, bool)          {}
func (p *nullPrinter) Newline()                          {}
func (p *nullPrinter) Error(int, string, ...interface{}) {}
