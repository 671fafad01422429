// Package errors provides error formatting for book and check errors. It
// separates presentation from the domain packages, allowing errors to be
// rendered as text for the command line or as JSON for the HTTP API.
//
// The package defines a Formatter interface and provides two implementations:
//   - TextFormatter: the message, followed by the offending record when a
//     book is available to look it up
//   - JSONFormatter: structured JSON for APIs
//
// Error types remain in their packages (book, check); this package only
// relies on their Get* accessors.
package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/robinvdvleuten/gnucash/book"
)

// Formatter formats errors for output in different formats.
type Formatter interface {
	// Format formats a single error.
	Format(err error) string

	// FormatAll formats multiple errors.
	FormatAll(errs []error) string
}

type recordError interface {
	GetRecordID() string
	Error() string
}

// TextFormatter formats errors for command-line output.
type TextFormatter struct {
	book *book.Book
}

// TextFormatterOption is an option for configuring TextFormatter.
type TextFormatterOption func(*TextFormatter)

// WithBook lets the formatter show the record an error refers to.
func WithBook(b *book.Book) TextFormatterOption {
	return func(tf *TextFormatter) {
		tf.book = b
	}
}

// NewTextFormatter creates a new text formatter.
func NewTextFormatter(opts ...TextFormatterOption) *TextFormatter {
	tf := &TextFormatter{}
	for _, opt := range opts {
		opt(tf)
	}
	return tf
}

// Format formats a single error. Errors naming a record of the book are
// followed by a short rendering of that record.
func (tf *TextFormatter) Format(err error) string {
	if e, ok := err.(recordError); ok && tf.book != nil {
		if obj := tf.lookup(e.GetRecordID()); obj != nil {
			return tf.formatWithContext(e.Error(), obj)
		}
	}
	return err.Error()
}

// FormatAll formats multiple errors, separating them with blank lines.
func (tf *TextFormatter) FormatAll(errs []error) string {
	if len(errs) == 0 {
		return ""
	}

	var buf bytes.Buffer
	for i, err := range errs {
		buf.WriteString(tf.Format(err))

		if i < len(errs)-1 {
			buf.WriteString("\n\n")
		}
	}

	return buf.String()
}

func (tf *TextFormatter) lookup(id string) book.Object {
	if id == "" {
		return nil
	}
	if tr, ok := tf.book.Transaction(id); ok {
		return tr
	}
	if s, ok := tf.book.Split(id); ok {
		return s
	}
	if acc, ok := tf.book.Account(id); ok {
		return acc
	}
	return nil
}

// formatWithContext writes message followed by obj, indented by three
// spaces.
func (tf *TextFormatter) formatWithContext(message string, obj book.Object) string {
	var buf bytes.Buffer

	buf.WriteString(message)
	buf.WriteString("\n\n")

	switch o := obj.(type) {
	case *book.Transaction:
		writeTransaction(&buf, o)

	case *book.Split:
		writeTransaction(&buf, o.Transaction())

	case *book.Account:
		buf.WriteString("   ")
		fmt.Fprintf(&buf, "%s %s", o.Path(), o.Type)
		if o.Description != "" {
			fmt.Fprintf(&buf, " %q", o.Description)
		}
		buf.WriteByte('\n')
	}

	return buf.String()
}

func writeTransaction(buf *bytes.Buffer, tr *book.Transaction) {
	buf.WriteString("   ")
	fmt.Fprintf(buf, "%s", tr.PostedDay())
	if tr.Num != "" {
		fmt.Fprintf(buf, " #%s", tr.Num)
	}
	fmt.Fprintf(buf, " %q\n", tr.Description)

	for _, s := range tr.Splits() {
		buf.WriteString("     ")
		fmt.Fprintf(buf, "%s  %s", s.Account().Path(), s.Value.String())
		if memo := strings.TrimSpace(s.Memo); memo != "" {
			fmt.Fprintf(buf, "  ; %s", memo)
		}
		buf.WriteByte('\n')
	}
}

// JSONFormatter formats errors as JSON.
type JSONFormatter struct{}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// ErrorJSON represents an error in JSON format.
type ErrorJSON struct {
	Type    string         `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Format formats a single error as JSON.
func (jf *JSONFormatter) Format(err error) string {
	errJSON := jf.toJSON(err)
	data, _ := json.Marshal(errJSON)
	return string(data)
}

// FormatAll formats multiple errors as a JSON array.
func (jf *JSONFormatter) FormatAll(errs []error) string {
	jsonErrors := jf.FormatAllToSlice(errs)
	data, _ := json.MarshalIndent(jsonErrors, "", "  ")
	return string(data)
}

// FormatAllToSlice returns errors as a slice of ErrorJSON structs.
func (jf *JSONFormatter) FormatAllToSlice(errs []error) []ErrorJSON {
	result := make([]ErrorJSON, 0, len(errs))
	for _, err := range errs {
		result = append(result, jf.toJSON(err))
	}
	return result
}

// toJSON converts an error to ErrorJSON.
func (jf *JSONFormatter) toJSON(err error) ErrorJSON {
	errJSON := ErrorJSON{
		Type:    fmt.Sprintf("%T", err),
		Message: err.Error(),
		Details: make(map[string]any),
	}

	if e, ok := err.(interface{ GetRecordID() string }); ok && e.GetRecordID() != "" {
		errJSON.Details["record"] = e.GetRecordID()
	}
	if e, ok := err.(interface{ GetTargetID() string }); ok {
		errJSON.Details["target"] = e.GetTargetID()
	}
	if e, ok := err.(interface{ GetName() string }); ok {
		errJSON.Details["name"] = e.GetName()
	}
	if e, ok := err.(interface{ GetKey() string }); ok {
		errJSON.Details["key"] = e.GetKey()
	}
	if e, ok := err.(interface{ GetCheck() string }); ok && e.GetCheck() != "" {
		errJSON.Details["check"] = e.GetCheck()
	}

	if len(errJSON.Details) == 0 {
		errJSON.Details = nil
	}
	return errJSON
}
