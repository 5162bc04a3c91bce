// Package term renders the transcript of a setup run for the user and asks
// the user questions.
package term

import (
	"io"

	"github.com/cloudworx/setup/log"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Styles holds the resolved styles for each kind of message. It is created
// once and passed by value.
type Styles struct {
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Info    lipgloss.Style
	Dim     lipgloss.Style
	Bold    lipgloss.Style
	Accent  lipgloss.Style

	profile termenv.Profile
}

// NewStyles binds the styles to the writer w. The mode is one of ColorAuto,
// ColorAlways or ColorNever. With ColorAuto colors are only used if w is a
// terminal and the environment doesn't ask for plain output (NO_COLOR).
func NewStyles(w io.Writer, mode string) Styles {
	r := lipgloss.NewRenderer(w)

	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	default:
		if !log.IsTerminal(w) {
			r.SetColorProfile(termenv.Ascii)
		}
	}

	return Styles{
		Success: r.NewStyle().Foreground(lipgloss.Color("10")),
		Warn:    r.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("9")),
		Info:    r.NewStyle().Foreground(lipgloss.Color("12")),
		Dim:     r.NewStyle().Faint(true),
		Bold:    r.NewStyle().Bold(true),
		Accent:  r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		profile: r.ColorProfile(),
	}
}

// Plain returns whether no styling is applied at all.
func (s Styles) Plain() bool {
	return s.profile == termenv.Ascii
}
