package cli

import (
	"fmt"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/output"
)

type DaysCmd struct {
	BookArg

	Account string `help:"Account to show the days of." placeholder:"PATH"`
}

func (cmd *DaysCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "days")
	defer finish()

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

	t := newTable("day", "transactions", "net", "start", "end").alignRight(1, 2, 3, 4)
	for _, d := range acc.DayList() {
		t.add(dayLabel(d.Key),
			strconv.Itoa(len(d.Transactions())),
			d.Net.StringFixed(2),
			d.StartingBalance.StringFixed(2),
			d.EndingBalance.StringFixed(2),
		)
	}

	styles := output.NewStyles(ctx.Stdout)
	t.render(ctx.Stdout, func(col int, cell string) string {
		if col >= 2 {
			return styles.Amount(cell)
		}
		return cell
	})
	return nil
}

func dayLabel(key book.DayKey) string {
	if key.IsOpening() {
		return "opening"
	}
	return key.String()
}
