// Package config reads book descriptors: small YAML files that point at a
// GnuCash export and carry the settings the export itself lacks.
//
//	path: books/club.gnucash
//	meta:
//	  period: {from: 2024-01-01, to: 2024-12-31}
//	opening balance: ":Equity:Opening Balances"
//	census regex: '^census (?P<amount>-?[0-9.]+)'
//	checks: true
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/robinvdvleuten/gnucash/book"
)

// File is a parsed book descriptor.
type File struct {
	// Path is the GnuCash file, relative to the descriptor or to Repo.
	Path string `yaml:"path"`
	// Repo is a git work tree; when set the file is read from HEAD.
	Repo           string   `yaml:"repo,omitempty"`
	Meta           Meta     `yaml:"meta,omitempty"`
	OpeningBalance string   `yaml:"opening balance,omitempty"`
	CensusRegex    string   `yaml:"census regex,omitempty"`
	NumberPattern  string   `yaml:"number pattern,omitempty"`
	Checks         bool     `yaml:"checks,omitempty"`
	Accounts       Accounts `yaml:"accounts,omitempty"`

	// dir is the directory the descriptor was loaded from.
	dir string
}

// Meta holds the bookkeeping period and the reference day.
type Meta struct {
	Period Period `yaml:"period,omitempty"`
	Today  string `yaml:"today,omitempty"`
}

// Period bounds are YYYY-MM-DD dates.
type Period struct {
	From string `yaml:"from,omitempty"`
	To   string `yaml:"to,omitempty"`
}

// Accounts names the parents of the per member accounts.
type Accounts struct {
	Debitors  string `yaml:"debitors,omitempty"`
	Creditors string `yaml:"creditors,omitempty"`
}

// IsDescriptor reports whether path looks like a descriptor by extension.
func IsDescriptor(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Load reads a descriptor from disk.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	f.dir = filepath.Dir(abs)
	return f, nil
}

// Parse decodes a descriptor. Relative paths stay relative to the working
// directory.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}
	if f.Path == "" {
		return nil, fmt.Errorf("descriptor has no path")
	}
	return &f, nil
}

// Save writes the descriptor as YAML.
func (f *File) Save(path string) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshaling descriptor: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing descriptor: %w", err)
	}
	return nil
}

func (f *File) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || f.dir == "" {
		return p
	}
	return filepath.Join(f.dir, p)
}

// RepoDir is the git work tree, resolved against the descriptor directory.
// It is empty when the file is not read from git.
func (f *File) RepoDir() string {
	return f.resolve(f.Repo)
}

// BookPath is the GnuCash file on disk. For git snapshots it is the path
// inside the repository as given.
func (f *File) BookPath() string {
	if f.Repo != "" {
		return f.Path
	}
	return f.resolve(f.Path)
}

// Options converts the descriptor settings for book.ConfigFromOptions.
func (f *File) Options() book.Options {
	return book.Options{
		PeriodFrom:     f.Meta.Period.From,
		PeriodTo:       f.Meta.Period.To,
		Today:          f.Meta.Today,
		OpeningBalance: f.OpeningBalance,
		Census:         f.CensusRegex,
		NumberPattern:  f.NumberPattern,
	}
}

// BookConfig parses the descriptor settings into a book configuration.
func (f *File) BookConfig() (*book.Config, error) {
	return book.ConfigFromOptions(f.Options())
}
