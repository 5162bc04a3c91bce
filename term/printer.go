package term

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	prefixSuccess = "✓"
	prefixWarn    = "!"
	prefixError   = "✗"
	prefixInfo    = "→"
	outputMarker  = " | "
)

var reQuoted = regexp.MustCompile("`(.*?)`")

// Printer writes the transcript of a run. Every message is written as a whole
// line, except progress lines of a command's output which end with a carriage
// return.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter returns a Printer that writes to w with the given styles.
func NewPrinter(w io.Writer, styles Styles) *Printer {
	return &Printer{
		w:      w,
		styles: styles,
	}
}

// Section starts a new section, preceded by an empty line.
func (p *Printer) Section(title string) {
	fmt.Fprintf(p.w, "\n%s\n", p.styles.Bold.Render("["+title+"]"))
}

func (p *Printer) Success(indent int, format string, args ...interface{}) {
	p.message(indent, prefixSuccess, p.styles.Success, format, args...)
}

func (p *Printer) Warn(indent int, format string, args ...interface{}) {
	p.message(indent, prefixWarn, p.styles.Warn, format, args...)
}

func (p *Printer) Error(indent int, format string, args ...interface{}) {
	p.message(indent, prefixError, p.styles.Error, format, args...)
}

func (p *Printer) Info(indent int, format string, args ...interface{}) {
	p.message(indent, prefixInfo, p.styles.Info, format, args...)
}

// Dim writes a dimmed line without prefix. Back-quoted spans are not treated
// specially.
func (p *Printer) Dim(indent int, line string) {
	fmt.Fprintf(p.w, "%s%s\n", padding(indent), p.styles.Dim.Render(line))
}

// Output writes a line of a command's output. A progress line ends with a
// carriage return such that the next line overwrites it.
func (p *Printer) Output(line string, indent int, progress bool) {
	end := "\n"
	if progress {
		end = "\r"
	}

	fmt.Fprintf(p.w, "%s%s%s", padding(indent), p.styles.Dim.Render(outputMarker+line), end)
}

func (p *Printer) Newline() {
	fmt.Fprint(p.w, "\n")
}

// Banner writes the name and the version of the tool.
func (p *Printer) Banner(name, version string) {
	fmt.Fprintf(p.w, "\n%s %s\n", p.styles.Accent.Render(name), p.styles.Dim.Render("v"+version))
}

func (p *Printer) message(indent int, prefix string, style lipgloss.Style, format string, args ...interface{}) {
	msg := format
	if len(args) != 0 {
		msg = fmt.Sprintf(format, args...)
	}

	fmt.Fprintf(p.w, "%s%s\n", padding(indent), p.render(style, prefix+" "+msg))
}

// render applies the style to s, but leaves back-quoted spans unstyled.
func (p *Printer) render(style lipgloss.Style, s string) string {
	if p.styles.Plain() {
		return s
	}

	b := strings.Builder{}
	last := 0

	for _, loc := range reQuoted.FindAllStringIndex(s, -1) {
		if loc[0] > last {
			b.WriteString(style.Render(s[last:loc[0]]))
		}

		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}

	if last < len(s) {
		b.WriteString(style.Render(s[last:]))
	}

	return b.String()
}

func padding(indent int) string {
	if indent <= 0 {
		return ""
	}

	return strings.Repeat(" ", indent)
}
