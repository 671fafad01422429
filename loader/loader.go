// Package loader opens a book from disk and turns it into a linked
// book.Book. A book is given either as a GnuCash file (plain or gzip
// compressed) or as a YAML descriptor pointing at one.
//
// A descriptor may name a git repository, in which case the GnuCash file is
// read from the HEAD commit instead of the work tree, so uncommitted edits
// in GnuCash do not show up half way.
//
// Example usage:
//
//	// Load a GnuCash file with the configuration carried by ctx
//	ldr := loader.New()
//	result, err := ldr.Load(ctx, "club.gnucash")
//
//	// Load through a descriptor and run the checks it enables
//	ldr := loader.New(loader.WithLogger(logger))
//	result, err := ldr.Load(ctx, "gnucash.yaml")
package loader

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/check"
	"github.com/robinvdvleuten/gnucash/config"
	"github.com/robinvdvleuten/gnucash/gncxml"
	"github.com/robinvdvleuten/gnucash/records"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

// Loader loads books. Configure it using functional options passed to New:
//
//	loader := New(WithChecks(), WithLogger(logger))
type Loader struct {
	// Checks runs the default checks and marks the book even when the
	// descriptor does not ask for it.
	Checks bool

	logger *zap.Logger
	git    func(ctx context.Context, dir, path string) ([]byte, error)
}

// Option configures how books are loaded.
type Option func(*Loader)

// WithChecks runs the default checks after building the book.
func WithChecks() Option {
	return func(l *Loader) {
		l.Checks = true
	}
}

// WithLogger sets the logger used for load events and check runs.
func WithLogger(logger *zap.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// New creates a new Loader with the given options.
func New(opts ...Option) *Loader {
	l := &Loader{
		logger: zap.NewNop(),
		git:    gitShow,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Result is a loaded book.
type Result struct {
	// Root is the absolute path that was loaded.
	Root string
	// Descriptor is nil when a GnuCash file was loaded directly.
	Descriptor *config.File
	Records    *records.Records
	Book       *book.Book
	// Index is set when checks ran.
	Index *check.Index
	// Files lists the paths whose change invalidates the result.
	Files []string
}

// Load reads path, which is either a descriptor or a GnuCash file.
func (l *Loader) Load(ctx context.Context, path string) (*Result, error) {
	timer := telemetry.StartTimer(ctx, "loader.load")
	defer timer.End()

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for %s: %w", path, err)
	}
	result := &Result{Root: absPath}

	cfg := book.ConfigFromContext(ctx)
	runChecks := l.Checks

	if config.IsDescriptor(absPath) {
		desc, err := config.Load(absPath)
		if err != nil {
			return nil, err
		}
		result.Descriptor = desc
		result.Files = append(result.Files, absPath)

		if cfg, err = desc.BookConfig(); err != nil {
			return nil, fmt.Errorf("%s: %w", absPath, err)
		}
		runChecks = runChecks || desc.Checks

		if result.Records, err = l.readDescribed(ctx, desc, result); err != nil {
			return nil, err
		}
	} else {
		if result.Records, err = gncxml.ReadFile(ctx, absPath); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, absPath)
	}

	if result.Book, err = book.Build(ctx, result.Records, cfg); err != nil {
		return nil, err
	}

	stats := result.Records.Stats()
	l.logger.Info("loaded book",
		zap.String("path", absPath),
		zap.Int("accounts", stats.Accounts),
		zap.Int("transactions", stats.Transactions),
		zap.Int("splits", stats.Splits),
	)

	if runChecks {
		registry := check.Default(check.WithLogger(l.logger))
		if result.Index, err = registry.MarkAll(ctx, result.Book); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (l *Loader) readDescribed(ctx context.Context, desc *config.File, result *Result) (*records.Records, error) {
	repo := desc.RepoDir()
	if repo == "" {
		path := desc.BookPath()
		result.Files = append(result.Files, path)
		return gncxml.ReadFile(ctx, path)
	}

	data, err := l.git(ctx, repo, desc.BookPath())
	if err != nil {
		return nil, err
	}
	// HEAD's reflog is appended to on every commit and checkout.
	result.Files = append(result.Files, filepath.Join(repo, ".git", "logs", "HEAD"))

	l.logger.Debug("read book from git", zap.String("repo", repo), zap.String("path", desc.BookPath()))

	recs, err := gncxml.Decode(ctx, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w", repo, desc.BookPath(), err)
	}
	return recs, nil
}

// gitShow returns the contents of path as committed at HEAD of the
// repository in dir.
func gitShow(ctx context.Context, dir, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", "show", "HEAD:"+filepath.ToSlash(path))
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git show HEAD:%s: %s: %w", path, strings.TrimSpace(stderr.String()), err)
	}
	return out, nil
}
