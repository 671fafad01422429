package cli

import (
	"encoding/json"
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/robinvdvleuten/gnucash/check"
	"github.com/robinvdvleuten/gnucash/report"
)

type CheckCmd struct {
	BookArg

	Only []string `help:"Run only the named checks." placeholder:"NAME"`
	JSON bool     `help:"Print the findings as JSON."`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	runCtx, logger, finish := cmd.run(ctx, globals, "check")
	defer finish()

	result, err := cmd.loadOrReport(runCtx, ctx, logger)
	if err != nil {
		return err
	}

	registry := check.Default(check.WithLogger(logger))
	idx, err := registry.MarkAll(runCtx, result.Book, cmd.Only...)
	if err != nil {
		return err
	}
	summary := report.Checks(idx)

	if cmd.JSON {
		enc := json.NewEncoder(ctx.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(summary); err != nil {
			return err
		}
	} else {
		renderFindings(ctx, summary)
		if len(idx.Report.Errors) > 0 {
			_, _ = fmt.Fprintln(ctx.Stderr, NewErrorRenderer(result.Book).RenderCheckErrors(idx.Report.Errors))
			_, _ = fmt.Fprintln(ctx.Stderr)
		}
	}

	errs := idx.Report.Count(check.SeverityError)
	warnings := idx.Report.Count(check.SeverityWarning)

	if summary.Failed {
		if !cmd.JSON {
			printError(ctx.Stderr, fmt.Sprintf("%d error(s), %d warning(s), %d check(s) not evaluated",
				errs, warnings, len(idx.Report.Errors)))
		}
		return NewCommandError(ExitChecksFailed)
	}

	if !cmd.JSON {
		if warnings > 0 {
			printWarning(ctx.Stdout, fmt.Sprintf("Check passed with %d warning(s)", warnings))
		} else {
			printSuccess(ctx.Stdout, "Check passed")
		}
	}
	return nil
}

func renderFindings(ctx *kong.Context, summary *report.CheckSummary) {
	for _, f := range summary.Findings {
		if len(f.Handles) == 0 {
			continue
		}
		style := warningStyle
		if f.Severity == check.SeverityError {
			style = errorStyle
		}
		_, _ = fmt.Fprintf(ctx.Stdout, "%s %s\n", style.Render(f.Name), dimStyle.Render(f.Description))
		for _, h := range f.Handles {
			_, _ = fmt.Fprintf(ctx.Stdout, "   %s\n", h)
		}
		_, _ = fmt.Fprintln(ctx.Stdout)
	}
	for _, name := range summary.Skipped {
		printInfof(ctx.Stdout, "skipped %s", name)
	}
}
