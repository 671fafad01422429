package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/output"
	"github.com/robinvdvleuten/gnucash/report"
)

type MutationsCmd struct {
	BookArg

	Account string `help:"Account to list the mutations of, including its descendants." placeholder:"PATH"`
	From    string `help:"First posting day (YYYY-MM-DD)." placeholder:"DAY"`
	To      string `help:"Last posting day (YYYY-MM-DD)." placeholder:"DAY"`
}

func (cmd *MutationsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "mutations")
	defer finish()

	filter := report.Filter{}
	var err error
	if cmd.From != "" {
		if filter.Begin, err = parseDay(cmd.From); err != nil {
			return err
		}
	}
	if cmd.To != "" {
		if filter.End, err = parseDay(cmd.To); err != nil {
			return err
		}
	}

	result, err := cmd.loadOrReport(runCtx, ctx, logger)
	if err != nil {
		return err
	}

	path := cmd.Account
	if path == "" {
		if path, err = pickAccount(result.Book, "Account"); err != nil {
			return err
		}
		if path == "" {
			return fmt.Errorf("no account given, use --account")
		}
	}
	acc, err := result.Book.AcByPath(path)
	if err != nil {
		return err
	}

	t := newTable("date", "transaction", "account", "description", "value").alignRight(4)
	for _, s := range report.Mutations(acc, filter) {
		tr := s.Transaction()
		description := tr.Description
		if s.Memo != "" {
			description += " (" + s.Memo + ")"
		}
		t.add(tr.PostedDay().String(), tr.Handle(), s.Account().ShortPath(), description, s.Value.StringFixed(2))
	}

	styles := output.NewStyles(ctx.Stdout)
	t.render(ctx.Stdout, func(col int, cell string) string {
		switch col {
		case 1:
			return styles.Handle(cell)
		case 2:
			return styles.Account(cell)
		case 4:
			return styles.Amount(cell)
		}
		return cell
	})
	return nil
}
