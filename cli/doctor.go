package cli

import (
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/alecthomas/repr"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/loader"
)

// DoctorCmd provides doctor utilities for debugging GnuCash files.
type DoctorCmd struct {
	Records RecordsCmd `cmd:"" help:"Dump the decoded records of a GnuCash file."`
	Resolve ResolveCmd `cmd:"" help:"Look up an object by its handle."`
}

// RecordsCmd dumps the record store a GnuCash file decodes into.
type RecordsCmd struct {
	BookArg

	Stats bool `help:"Only print record counts."`
}

// Run executes the records command.
func (cmd *RecordsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "records")
	defer finish()

	result, err := cmd.loadOrReport(runCtx, ctx, logger)
	if err != nil {
		return err
	}

	p := repr.New(ctx.Stdout, repr.Indent("  "), repr.OmitEmpty(true))
	if cmd.Stats {
		p.Println(result.Records.Stats())
		return nil
	}
	p.Println(result.Records)
	return nil
}

// ResolveCmd prints the object a handle refers to.
type ResolveCmd struct {
	BookArg

	Handle string `help:"Handle such as ':Assets:Cash', 'tr042', 'id<guid>' or 'day2024-01-05:Assets:Cash'." arg:""`
}

// Run executes the resolve command.
func (cmd *ResolveCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "resolve")
	defer finish()

	result, err := cmd.loadOrReport(runCtx, ctx, logger, loader.WithChecks())
	if err != nil {
		return err
	}

	obj, err := result.Book.Resolve(cmd.Handle)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(ctx.Stdout, "%s %s\n", describe(obj), pathStyle.Render(obj.Handle()))
	if checks := obj.Checks(); len(checks) > 0 {
		printWarning(ctx.Stdout, "flagged by "+strings.Join(checks, ", "))
	}
	return nil
}

func describe(obj book.Object) string {
	switch o := obj.(type) {
	case *book.Account:
		return fmt.Sprintf("account %s (%s), balance %s", o.Path(), o.Type, o.Balance().StringFixed(2))
	case *book.Transaction:
		return fmt.Sprintf("transaction %s %q, %d split(s)", o.PostedDay(), o.Description, len(o.Splits()))
	case *book.Split:
		return fmt.Sprintf("split of %s on %s, value %s", o.Transaction().Handle(), o.Account().Path(), o.Value.StringFixed(2))
	case *book.AccountDay:
		return fmt.Sprintf("day %s of %s, %s to %s", dayLabel(o.Key), o.Account().Path(),
			o.StartingBalance.StringFixed(2), o.EndingBalance.StringFixed(2))
	}
	return fmt.Sprintf("%T", obj)
}
