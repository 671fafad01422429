package errors_test

import (
	"fmt"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/errors"
)

// Example showing how to use TextFormatter for CLI output
func ExampleTextFormatter() {
	err := book.NewParentReferenceError("a1", "a0")

	formatter := errors.NewTextFormatter()
	fmt.Println(formatter.Format(err))
	// Output: account a1: parent references unknown account a0
}

// Example showing how to use JSONFormatter for API output
func ExampleJSONFormatter() {
	errs := []error{
		book.NewParentReferenceError("a1", "a0"),
		book.NewNotFoundError("transaction", "042"),
	}

	formatter := errors.NewJSONFormatter()
	fmt.Println(formatter.FormatAll(errs))
}
