package cli

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/loader"
	"github.com/robinvdvleuten/gnucash/output"
	"github.com/robinvdvleuten/gnucash/report"
)

type DebitorsCmd struct {
	BookArg

	Name      string `help:"Show the statement of this member." placeholder:"NAME"`
	Debitors  string `help:"Parent of the per member debitor accounts (overrides the descriptor)." placeholder:"PATH"`
	Creditors string `help:"Parent of the per member creditor accounts (overrides the descriptor)." placeholder:"PATH"`
}

// paths returns the creditor and debitor parents from the flags, falling
// back to the descriptor.
func (cmd *DebitorsCmd) paths(result *loader.Result) (string, string, error) {
	creditors, debitors := cmd.Creditors, cmd.Debitors
	if desc := result.Descriptor; desc != nil {
		if creditors == "" {
			creditors = desc.Accounts.Creditors
		}
		if debitors == "" {
			debitors = desc.Accounts.Debitors
		}
	}
	if creditors == "" || debitors == "" {
		return "", "", fmt.Errorf("both --creditors and --debitors are needed")
	}
	return creditors, debitors, nil
}

func (cmd *DebitorsCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "debitors")
	defer finish()

	result, err := cmd.loadOrReport(runCtx, ctx, logger)
	if err != nil {
		return err
	}
	creditors, debitors, err := cmd.paths(result)
	if err != nil {
		return err
	}

	styles := output.NewStyles(ctx.Stdout)

	if cmd.Name != "" {
		st, err := report.UserBalance(result.Book, creditors+":"+cmd.Name, debitors+":"+cmd.Name)
		if err != nil {
			return err
		}
		if len(st.Accounts) == 0 {
			return fmt.Errorf("no accounts for member %q", cmd.Name)
		}

		t := newTable("date", "tr", "description", "value").alignRight(3)
		for _, m := range st.Mutations {
			description := m.TransactionDescription
			if m.Description != "" {
				description += " (" + m.Description + ")"
			}
			t.add(m.Date.String(), m.Num, description, m.Value.StringFixed(2))
		}
		t.add("", "", "total", st.Total.StringFixed(2))
		t.render(ctx.Stdout, func(col int, cell string) string {
			if col == 3 {
				return styles.Amount(cell)
			}
			return cell
		})
		return nil
	}

	list, err := report.Debitors(result.Book, creditors, debitors)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		printSuccess(ctx.Stdout, "Nobody owes anything")
		return nil
	}

	t := newTable("member", "owes").alignRight(1)
	for _, d := range list {
		t.add(d.Name, d.Value.StringFixed(2))
	}
	t.render(ctx.Stdout, func(col int, cell string) string {
		if col == 1 {
			return styles.Amount(cell)
		}
		return styles.Account(cell)
	})
	return nil
}
