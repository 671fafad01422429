package cli

import (
	"strings"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/output"
	"github.com/robinvdvleuten/gnucash/report"
)

type BalanceCmd struct {
	BookArg

	Date    string `help:"Day to show the balances of (YYYY-MM-DD, 'opening' or 'latest')." default:"latest"`
	Account string `help:"Show only this account and its descendants." placeholder:"PATH"`
	Depth   int    `help:"Maximum depth below the account (0 is unlimited)." default:"0"`
}

func (cmd *BalanceCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "balance")
	defer finish()

	day, err := parseDay(cmd.Date)
	if err != nil {
		return err
	}

	result, err := cmd.loadOrReport(runCtx, ctx, logger)
	if err != nil {
		return err
	}

	from := result.Book.Root()
	if cmd.Account != "" {
		if from, err = result.Book.AcByPath(cmd.Account); err != nil {
			return err
		}
	}

	t := newTable("account", "balance").alignRight(1)
	report.Tree(from, day, cmd.Depth).Walk(func(n *report.Node) {
		name := n.Account.Name
		if n.Account.IsRoot() {
			name = ":"
		}
		t.add(strings.Repeat("  ", n.Depth)+name, n.Balance.StringFixed(2))
	})

	styles := output.NewStyles(ctx.Stdout)
	t.render(ctx.Stdout, func(col int, cell string) string {
		if col == 1 {
			return styles.Amount(cell)
		}
		return styles.Account(cell)
	})
	return nil
}
