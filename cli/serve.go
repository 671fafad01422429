package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/web"
)

type ServeCmd struct {
	BookArg

	Port    int  `help:"Port to listen on." default:"8080"`
	NoWatch bool `help:"Do not reload the book when it changes on disk." name:"no-watch"`
}

func (cmd *ServeCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "serve")
	defer finish()

	cfg, err := book.ConfigFromOptions(book.Options{
		OpeningBalance: cmd.OpeningBalance,
		Census:         cmd.Census,
	})
	if err != nil {
		return err
	}
	runCtx = cfg.WithContext(runCtx)

	runCtx, stop := signal.NotifyContext(runCtx, os.Interrupt)
	defer stop()

	bookFile, err := filepath.Abs(cmd.File)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	version := Version
	if version == "" {
		version = "dev"
	}
	commitSHA := CommitSHA
	if commitSHA == "" {
		commitSHA = "local"
	}

	server := web.New(cmd.Port, bookFile, web.WithLogger(logger), web.WithVersion(version, commitSHA))
	server.WatchEnabled = !cmd.NoWatch

	printInfof(ctx.Stdout, "Starting server on %s:%d", server.Host, cmd.Port)
	printInfof(ctx.Stdout, "Serving book: %s", pathStyle.Render(bookFile))

	return server.Start(runCtx)
}
