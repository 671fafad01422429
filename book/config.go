package book

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

// Config holds the book level settings that are not part of the export.
type Config struct {
	// Period is the bookkeeping period. Nil means unbounded.
	Period *Period
	// Today is the reference day for future-dated transactions.
	Today DayKey
	// OpeningBalance is the path of the account holding opening balances.
	OpeningBalance string
	// Census matches descriptions of census transactions. A group named
	// "amount", or else the first group, captures the target balance.
	Census *regexp.Regexp
	// NumberPattern is the format transaction numbers must follow.
	NumberPattern *regexp.Regexp
}

// NewConfig creates a Config with no period and today's date.
func NewConfig() *Config {
	return &Config{
		Today: DayOf(time.Now()),
	}
}

// Options are the raw string settings a book descriptor provides.
type Options struct {
	PeriodFrom     string
	PeriodTo       string
	Today          string
	OpeningBalance string
	Census         string
	NumberPattern  string
}

// ConfigFromOptions parses raw settings into a Config. Empty options keep
// the defaults of NewConfig.
func ConfigFromOptions(opts Options) (*Config, error) {
	cfg := NewConfig()

	if opts.PeriodFrom != "" || opts.PeriodTo != "" {
		if opts.PeriodFrom == "" || opts.PeriodTo == "" {
			return nil, fmt.Errorf("period needs both from and to, got %q..%q", opts.PeriodFrom, opts.PeriodTo)
		}
		from, err := ParseDay(opts.PeriodFrom)
		if err != nil {
			return nil, err
		}
		to, err := ParseDay(opts.PeriodTo)
		if err != nil {
			return nil, err
		}
		if to.Before(from) {
			return nil, fmt.Errorf("period ends (%s) before it starts (%s)", to, from)
		}
		cfg.Period = &Period{From: from, To: to}
	}

	if opts.Today != "" {
		today, err := ParseDay(opts.Today)
		if err != nil {
			return nil, err
		}
		cfg.Today = today
	}

	cfg.OpeningBalance = opts.OpeningBalance

	var err error
	if cfg.Census, err = compilePattern(opts.Census, "census regex"); err != nil {
		return nil, err
	}
	if cfg.NumberPattern, err = compilePattern(opts.NumberPattern, "number pattern"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func compilePattern(expr, what string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, NewParseError(expr, what, err)
	}
	return re, nil
}

// contextKey is a private type to avoid key collisions in context.
type contextKey struct{}

// WithContext returns a new context with the Config attached.
func (c *Config) WithContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// ConfigFromContext retrieves the Config from context.
// Returns a default Config if not found.
func ConfigFromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(contextKey{}).(*Config); ok {
		return cfg
	}
	return NewConfig()
}
