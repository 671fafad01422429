package cli

import (
	"go.uber.org/zap"
)

var (
	Version   = ""
	CommitSHA = ""
)

// Globals defines global flags available to all commands.
type Globals struct {
	Telemetry bool `help:"Show timing telemetry for operations."`
	Verbose   bool `help:"Log loading and check progress to stderr." short:"v"`
}

func (g *Globals) logger() *zap.Logger {
	if !g.Verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

type Commands struct {
	Globals

	Check     CheckCmd     `cmd:"" help:"Run the consistency checks on a book."`
	Balance   BalanceCmd   `cmd:"" help:"Show the balance tree of a book on a day."`
	Days      DaysCmd      `cmd:"" help:"Show the day table of an account."`
	Mutations MutationsCmd `cmd:"" help:"List the mutations of an account."`
	Debitors  DebitorsCmd  `cmd:"" help:"List members who owe money, or the statement of one member."`
	Serve     ServeCmd     `cmd:"" help:"Serve a book over a read-only JSON API."`
	Doctor    DoctorCmd    `cmd:"" help:"Doctor utilities for debugging GnuCash files."`
}
