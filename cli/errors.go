package cli

import (
	"strings"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/check"
	"github.com/robinvdvleuten/gnucash/errors"
)

// ErrorRenderer renders errors with terminal styling and, given a book, the
// record the error refers to.
type ErrorRenderer struct {
	formatter *errors.TextFormatter
}

// NewErrorRenderer creates a renderer. b may be nil.
func NewErrorRenderer(b *book.Book) *ErrorRenderer {
	var opts []errors.TextFormatterOption
	if b != nil {
		opts = append(opts, errors.WithBook(b))
	}
	return &ErrorRenderer{formatter: errors.NewTextFormatter(opts...)}
}

// Render formats a single error: the message in the error style, followed
// by dimmed context lines.
func (r *ErrorRenderer) Render(err error) string {
	formatted := r.formatter.Format(err)
	message, context, found := strings.Cut(formatted, "\n\n")

	var buf strings.Builder
	buf.WriteString(errorStyle.Render(message))
	if !found {
		return buf.String()
	}

	buf.WriteString("\n\n")
	for _, line := range strings.Split(strings.TrimRight(context, "\n"), "\n") {
		indent := len(line) - len(strings.TrimLeft(line, " "))
		buf.WriteString(line[:indent])
		buf.WriteString(dimStyle.Render(line[indent:]))
		buf.WriteByte('\n')
	}
	return buf.String()
}

// RenderAll formats multiple errors, separating them with blank lines.
func (r *ErrorRenderer) RenderAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf strings.Builder
	for i, err := range errs {
		buf.WriteString(r.Render(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

// RenderCheckErrors formats the checks that could not be evaluated.
func (r *ErrorRenderer) RenderCheckErrors(errs []*check.CheckError) string {
	all := make([]error, len(errs))
	for i, err := range errs {
		all[i] = err
	}
	return r.RenderAll(all)
}
