package cli

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/check"
)

func buildClub(t *testing.T) *book.Book {
	t.Helper()
	b, err := book.Build(context.Background(), clubRecords(false), book.NewConfig())
	assert.NoError(t, err)
	return b
}

func TestErrorRenderer_RenderTransactionContext(t *testing.T) {
	b := buildClub(t)
	tr, err := b.TrByNum("002")
	assert.NoError(t, err)

	renderer := NewErrorRenderer(b)
	output := renderer.Render(book.NewStructureError(tr.ID, "split without value"))

	message, context, found := strings.Cut(output, "\n\n")
	assert.True(t, found, "expected context after the message")
	assert.Contains(t, message, "split without value")

	lines := strings.Split(strings.TrimRight(context, "\n"), "\n")
	assert.Equal(t, 4, len(lines))
	assert.True(t, strings.HasPrefix(lines[0], "   "))
	assert.Contains(t, lines[0], `2024-02-01 #002 "dues"`)
	for _, line := range lines[1:] {
		assert.True(t, strings.HasPrefix(line, "     "), "split lines are indented by five spaces: %q", line)
	}
	assert.Contains(t, context, ":Assets:Debitors:alice  30")
	assert.Contains(t, context, ":Income  -50")
}

func TestErrorRenderer_RenderAccountContext(t *testing.T) {
	b := buildClub(t)
	cash, err := b.AcByPath("Assets:Cash")
	assert.NoError(t, err)

	output := NewErrorRenderer(b).Render(book.NewDuplicateNameError(cash.ID, "x", ":Assets", "Cash"))
	assert.Contains(t, output, `already has a child named "Cash"`)
	assert.Contains(t, output, "   :Assets:Cash CASH")
}

func TestErrorRenderer_RenderWithoutBook(t *testing.T) {
	renderer := NewErrorRenderer(nil)
	output := renderer.Render(book.NewStructureError("abc", "account without parent"))

	assert.Equal(t, errorStyle.Render("record abc: account without parent"), output)
	assert.NotContains(t, output, "\n")
}

func TestErrorRenderer_RenderUnknownRecord(t *testing.T) {
	output := NewErrorRenderer(buildClub(t)).Render(book.NewStructureError("missing", "gone"))
	assert.NotContains(t, output, "\n\n")
	assert.Contains(t, output, "record missing: gone")
}

func TestErrorRenderer_RenderCheckError(t *testing.T) {
	checkErr := &check.CheckError{Check: check.CensusMismatch, Err: fmt.Errorf("account has no day")}
	output := NewErrorRenderer(buildClub(t)).Render(checkErr)

	assert.Contains(t, output, "check census-mismatch failed: account has no day")
	assert.NotContains(t, output, "\n")
}

func TestErrorRenderer_RenderAll(t *testing.T) {
	renderer := NewErrorRenderer(nil)

	assert.Equal(t, "", renderer.RenderAll(nil))

	output := renderer.RenderAll([]error{
		book.NewNotFoundError("transaction number", "042"),
		book.NewNotFoundError("transaction number", "043"),
	})
	parts := strings.Split(output, "\n\n")
	assert.Equal(t, 2, len(parts))
	assert.Contains(t, parts[0], `"042"`)
	assert.Contains(t, parts[1], `"043"`)
}

func TestErrorRenderer_RenderCheckErrors(t *testing.T) {
	renderer := NewErrorRenderer(buildClub(t))

	assert.Equal(t, "", renderer.RenderCheckErrors(nil))

	output := renderer.RenderCheckErrors([]*check.CheckError{
		{Check: check.CensusMismatch, Err: fmt.Errorf("account has no day")},
		{Check: "member-dues", Err: fmt.Errorf("nil account")},
	})
	parts := strings.Split(output, "\n\n")
	assert.Equal(t, 2, len(parts))
	assert.Contains(t, parts[0], "check census-mismatch failed")
	assert.Contains(t, parts[1], "check member-dues failed: nil account")
}
