package check

import (
	"errors"
	"fmt"

	"github.com/robinvdvleuten/gnucash/book"
)

// Names of the built-in checks.
const (
	WrongSide          = "wrong-side"
	MutatesParent      = "mutates-parent"
	ZeroValue          = "zero-value"
	MissingSplits      = "missing-splits"
	OutsidePeriod      = "outside-period"
	FutureDated        = "future-dated"
	NoNumber           = "no-number"
	DuplicateNumber    = "duplicate-number"
	MalformedNumber    = "malformed-number"
	ImplausibleBalance = "implausible-balance"
	CensusMismatch     = "census-mismatch"
)

// Default returns a registry with the built-in checks.
func Default(opts ...Option) *Registry {
	r := NewRegistry(opts...)
	r.MustRegister(
		NewSplitCheck(WrongSide, "mutation against the account's natural direction", SeverityWarning, wrongSide),
		NewSplitCheck(MutatesParent, "mutation on an account that has children", SeverityError, mutatesParent),
		NewSplitCheck(ZeroValue, "mutation without value", SeverityWarning, zeroValue),
		NewTransactionCheck(MissingSplits, "transaction with fewer than two splits", SeverityError, missingSplits),
		NewTransactionCheck(OutsidePeriod, "transaction posted outside the book period", SeverityError, outsidePeriod),
		NewTransactionCheck(FutureDated, "transaction posted after today", SeverityWarning, futureDated),
		NewTransactionCheck(NoNumber, "transaction without number", SeverityError, noNumber),
		NewTransactionCheck(DuplicateNumber, "transaction number used more than once", SeverityError, duplicateNumber,
			After(NoNumber)),
		NewTransactionCheck(MalformedNumber, "transaction number not in the expected format", SeverityWarning, malformedNumber,
			After(NoNumber)),
		NewDayCheck(ImplausibleBalance, "account balance with the wrong sign", SeverityWarning, implausibleBalance,
			After(MutatesParent)),
		NewTransactionCheck(CensusMismatch, "census amount never reached on its day", SeverityError, censusMismatch,
			After(ZeroValue)),
	)
	return r
}

func wrongSide(_ *book.Book, s *book.Split) (bool, error) {
	return s.Account().MutationSign()*s.Value.Sign() < 0, nil
}

func mutatesParent(_ *book.Book, s *book.Split) (bool, error) {
	return s.Account().HasChildren(), nil
}

func zeroValue(_ *book.Book, s *book.Split) (bool, error) {
	return s.Value.IsZero() && !s.Transaction().Census, nil
}

func missingSplits(_ *book.Book, tr *book.Transaction) (bool, error) {
	return len(tr.Splits()) < 2 && !tr.Census, nil
}

func outsidePeriod(b *book.Book, tr *book.Transaction) (bool, error) {
	period := b.Config().Period
	if period == nil {
		return false, nil
	}
	return !period.Contains(tr.PostedDay()), nil
}

func futureDated(b *book.Book, tr *book.Transaction) (bool, error) {
	today := b.Config().Today
	if today.IsOpening() {
		return false, nil
	}
	return tr.PostedDay().After(today), nil
}

func noNumber(_ *book.Book, tr *book.Transaction) (bool, error) {
	return !tr.HasNum(), nil
}

func duplicateNumber(b *book.Book, tr *book.Transaction) (bool, error) {
	if !tr.HasNum() {
		return false, nil
	}
	_, err := b.TrByNum(tr.Num)
	var ambErr *book.AmbiguousError
	if errors.As(err, &ambErr) {
		return true, nil
	}
	return false, err
}

func malformedNumber(b *book.Book, tr *book.Transaction) (bool, error) {
	re := b.Config().NumberPattern
	if re == nil || !tr.HasNum() {
		return false, nil
	}
	return !re.MatchString(tr.Num), nil
}

func implausibleBalance(_ *book.Book, day *book.AccountDay) (bool, error) {
	return day.EndingBalance.Sign()*day.Account().BalanceSign() < 0, nil
}

// censusMismatch flags a census transaction when, for some account it
// touches, the target is not among that account's running balances on the
// census day.
func censusMismatch(_ *book.Book, tr *book.Transaction) (bool, error) {
	if !tr.Census || tr.CensusTarget == nil {
		return false, nil
	}
	target := *tr.CensusTarget

	seen := make(map[*book.Account]bool)
	for _, s := range tr.Splits() {
		acc := s.Account()
		if seen[acc] {
			continue
		}
		seen[acc] = true

		day, ok := acc.Day(tr.Day())
		if !ok {
			return false, fmt.Errorf("account %s has no day %q", acc.Path(), tr.Day())
		}
		reached := false
		for _, balance := range day.RunningBalances() {
			if balance.Equal(target) {
				reached = true
				break
			}
		}
		if !reached {
			return true, nil
		}
	}
	return false, nil
}
