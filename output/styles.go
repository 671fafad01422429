// Package output provides terminal styling for reports and diagnostics.
package output

import (
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Styles renders text for a particular writer. Colors are dropped when the
// writer is not a terminal.
type Styles struct {
	output *termenv.Output
}

// NewStyles creates a new Styles instance for the given writer.
func NewStyles(w io.Writer) *Styles {
	return &Styles{
		output: termenv.NewOutput(w),
	}
}

func (s *Styles) color(text, code string) termenv.Style {
	return s.output.String(text).Foreground(s.output.Color(code))
}

// Success is green and bold.
func (s *Styles) Success(text string) string {
	return s.color(text, "2").Bold().String()
}

// Error is red and bold.
func (s *Styles) Error(text string) string {
	return s.color(text, "1").Bold().String()
}

// Warning is yellow and bold.
func (s *Styles) Warning(text string) string {
	return s.color(text, "3").Bold().String()
}

// FilePath is cyan.
func (s *Styles) FilePath(text string) string {
	return s.color(text, "6").String()
}

// Account is yellow.
func (s *Styles) Account(text string) string {
	return s.color(text, "3").String()
}

// Handle is blue, for object handles such as "tr042".
func (s *Styles) Handle(text string) string {
	return s.color(text, "4").String()
}

// Amount colors negative amounts red and leaves others magenta.
func (s *Styles) Amount(text string) string {
	if strings.HasPrefix(strings.TrimSpace(text), "-") {
		return s.color(text, "1").String()
	}
	return s.color(text, "5").String()
}

// Keyword is bold.
func (s *Styles) Keyword(text string) string {
	return s.output.String(text).Bold().String()
}

// Dim is faint, for secondary information.
func (s *Styles) Dim(text string) string {
	return s.output.String(text).Faint().String()
}

// Output returns the underlying termenv Output.
func (s *Styles) Output() *termenv.Output {
	return s.output
}
