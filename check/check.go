// Package check runs named consistency rules over a book.
//
// A check is one of three kinds, depending on what it inspects: splits,
// transactions or account days. Each kind carries a predicate typed for its
// object, so a check can never be handed the wrong kind of object.
//
// Checks may depend on other checks. After(name) only orders execution.
// Requires(name) additionally skips the dependent check when the dependency
// flagged anything, failed or was skipped itself.
package check

import (
	"fmt"

	"github.com/robinvdvleuten/gnucash/book"
)

// Severity of a check's findings.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// MarshalText encodes the severity as "warning" or "error".
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts the output of MarshalText.
func (s *Severity) UnmarshalText(text []byte) error {
	switch string(text) {
	case "warning":
		*s = SeverityWarning
	case "error":
		*s = SeverityError
	default:
		return fmt.Errorf("unknown severity %q", text)
	}
	return nil
}

// Scope is the kind of object a check inspects.
type Scope int

const (
	ScopeSplit Scope = iota
	ScopeTransaction
	ScopeAccountDay
)

func (s Scope) String() string {
	switch s {
	case ScopeSplit:
		return "split"
	case ScopeTransaction:
		return "transaction"
	case ScopeAccountDay:
		return "account-day"
	}
	return fmt.Sprintf("Scope(%d)", int(s))
}

// Dependency names another check this one runs after.
type Dependency struct {
	Name   string
	Strong bool
}

// After orders a check after name without making it conditional.
func After(name string) Dependency {
	return Dependency{Name: name}
}

// Requires orders a check after name and skips it unless name passed.
func Requires(name string) Dependency {
	return Dependency{Name: name, Strong: true}
}

type (
	SplitPredicate       func(*book.Book, *book.Split) (bool, error)
	TransactionPredicate func(*book.Book, *book.Transaction) (bool, error)
	DayPredicate         func(*book.Book, *book.AccountDay) (bool, error)
)

// Check is a *SplitCheck, *TransactionCheck or *DayCheck.
type Check interface {
	Name() string
	Description() string
	Severity() Severity
	Deps() []Dependency
	Scope() Scope

	// run returns the objects the predicate matched, in book order.
	run(b *book.Book) ([]book.Object, error)
}

type base struct {
	name        string
	description string
	severity    Severity
	deps        []Dependency
}

func (c *base) Name() string        { return c.name }
func (c *base) Description() string { return c.description }
func (c *base) Severity() Severity  { return c.severity }
func (c *base) Deps() []Dependency  { return c.deps }

// SplitCheck inspects every split.
type SplitCheck struct {
	base
	predicate SplitPredicate
}

func NewSplitCheck(name, description string, severity Severity, predicate SplitPredicate, deps ...Dependency) *SplitCheck {
	return &SplitCheck{base: base{name, description, severity, deps}, predicate: predicate}
}

func (c *SplitCheck) Scope() Scope { return ScopeSplit }

func (c *SplitCheck) run(b *book.Book) ([]book.Object, error) {
	var matched []book.Object
	for _, s := range b.Splits() {
		ok, err := c.predicate(b, s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Handle(), err)
		}
		if ok {
			matched = append(matched, s)
		}
	}
	return matched, nil
}

// TransactionCheck inspects every transaction.
type TransactionCheck struct {
	base
	predicate TransactionPredicate
}

func NewTransactionCheck(name, description string, severity Severity, predicate TransactionPredicate, deps ...Dependency) *TransactionCheck {
	return &TransactionCheck{base: base{name, description, severity, deps}, predicate: predicate}
}

func (c *TransactionCheck) Scope() Scope { return ScopeTransaction }

func (c *TransactionCheck) run(b *book.Book) ([]book.Object, error) {
	var matched []book.Object
	for _, tr := range b.Transactions() {
		ok, err := c.predicate(b, tr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", tr.Handle(), err)
		}
		if ok {
			matched = append(matched, tr)
		}
	}
	return matched, nil
}

// DayCheck inspects every day of every account.
type DayCheck struct {
	base
	predicate DayPredicate
}

func NewDayCheck(name, description string, severity Severity, predicate DayPredicate, deps ...Dependency) *DayCheck {
	return &DayCheck{base: base{name, description, severity, deps}, predicate: predicate}
}

func (c *DayCheck) Scope() Scope { return ScopeAccountDay }

func (c *DayCheck) run(b *book.Book) ([]book.Object, error) {
	var matched []book.Object
	for _, acc := range b.Accounts() {
		for _, day := range acc.DayList() {
			ok, err := c.predicate(b, day)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", day.Handle(), err)
			}
			if ok {
				matched = append(matched, day)
			}
		}
	}
	return matched, nil
}
