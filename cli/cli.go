// Package cli implements the gnucash command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/loader"
	"github.com/robinvdvleuten/gnucash/output"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	warningSymbol = "!"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D787", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#FF5F87", Dark: "#FF5F87"})
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7AF00", Dark: "#FFD75F"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#5FAFFF", Dark: "#5FAFFF"})
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00D7D7", Dark: "#00D7D7"})
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#808080", Dark: "#808080"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		successStyle.Render(successSymbol),
		message,
	)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		errorStyle.Render(errorSymbol),
		errorStyle.Render(message),
	)
}

func printWarning(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n",
		warningStyle.Render(warningSymbol),
		message,
	)
}

func printInfof(w io.Writer, format string, args ...interface{}) {
	formatted := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n",
		infoStyle.Render(infoSymbol),
		formatted,
	)
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// pickAccount asks for an account on a terminal. It returns an empty path
// when stdin is not a terminal.
func pickAccount(b *book.Book, title string) (string, error) {
	if !isTerminal() {
		return "", nil
	}

	var options []huh.Option[string]
	for _, acc := range b.Accounts() {
		if acc.IsRoot() {
			continue
		}
		options = append(options, huh.NewOption(acc.Path(), acc.Path()))
	}

	var path string
	form := huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Filtering(true).
		Value(&path)

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("failed to read account: %w", err)
	}
	return path, nil
}

// padRight pads s with spaces to width terminal cells.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// padLeft right-aligns s in width terminal cells.
func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// BookArg is the book argument shared by the commands that read a book.
type BookArg struct {
	File           string `help:"GnuCash file or gnucash.yaml descriptor." arg:"" type:"existingfile"`
	OpeningBalance string `help:"Path of the opening balance account, when no descriptor is used." name:"opening-balance" placeholder:"PATH"`
	Census         string `help:"Regular expression matching census descriptions, when no descriptor is used." placeholder:"REGEX"`
}

// run sets up telemetry and logging for a command and returns the context
// to run it in. The returned function prints the timings, if requested,
// and must be called once the command is done.
func (a *BookArg) run(kctx *kong.Context, globals *Globals, name string) (context.Context, *zap.Logger, func()) {
	runCtx := context.Background()
	logger := globals.logger()

	var collector telemetry.Collector
	var rootTimer telemetry.Timer
	var once sync.Once

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		rootTimer = collector.Start(fmt.Sprintf("%s %s", name, filepath.Base(a.File)))
		runCtx = telemetry.WithRootTimer(runCtx, rootTimer)
	}

	finish := func() {
		once.Do(func() {
			_ = logger.Sync()
			if collector != nil {
				rootTimer.End()
				_, _ = fmt.Fprintln(kctx.Stderr)
				collector.Report(kctx.Stderr, output.NewStyles(kctx.Stderr))
			}
		})
	}
	return runCtx, logger, finish
}

// load reads the book. Flags only apply to plain GnuCash files, a
// descriptor carries its own settings.
func (a *BookArg) load(ctx context.Context, logger *zap.Logger, opts ...loader.Option) (*loader.Result, error) {
	cfg, err := book.ConfigFromOptions(book.Options{
		OpeningBalance: a.OpeningBalance,
		Census:         a.Census,
	})
	if err != nil {
		return nil, err
	}
	ctx = cfg.WithContext(ctx)

	opts = append(opts, loader.WithLogger(logger))
	return loader.New(opts...).Load(ctx, a.File)
}

// loadOrReport loads the book and renders a load failure to stderr.
func (a *BookArg) loadOrReport(ctx context.Context, kctx *kong.Context, logger *zap.Logger, opts ...loader.Option) (*loader.Result, error) {
	result, err := a.load(ctx, logger, opts...)
	if err != nil {
		_, _ = fmt.Fprintln(kctx.Stderr, NewErrorRenderer(nil).Render(err))
		_, _ = fmt.Fprintln(kctx.Stderr)
		printError(kctx.Stderr, "failed to load book")
		return nil, NewCommandError(ExitLoadFailed)
	}
	return result, nil
}

// parseDay accepts YYYY-MM-DD, "latest" or empty for the latest day.
func parseDay(s string) (book.DayKey, error) {
	switch s {
	case "", "latest":
		return book.Latest, nil
	case "opening":
		return book.Opening, nil
	}
	return book.ParseDay(s)
}
