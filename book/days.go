package book

import (
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// AccountDay rolls up an account's own splits for one day. Days of an
// account form a doubly linked list in key order, starting at Opening.
type AccountDay struct {
	Key             DayKey
	Net             decimal.Decimal
	StartingBalance decimal.Decimal
	EndingBalance   decimal.Decimal

	account *Account
	trIDs   []string
	prev    *AccountDay
	next    *AccountDay

	marks
}

func (d *AccountDay) Account() *Account {
	return d.account
}

// Transactions returns the transactions of the day in chronological order.
func (d *AccountDay) Transactions() []*Transaction {
	out := make([]*Transaction, len(d.trIDs))
	for i, id := range d.trIDs {
		out[i] = d.account.book.transactions[id]
	}
	return out
}

// Prev returns the previous day, nil for the opening day.
func (d *AccountDay) Prev() *AccountDay {
	return d.prev
}

// Next returns the following day, nil for the last one.
func (d *AccountDay) Next() *AccountDay {
	return d.next
}

// Handle returns "day<date><path>", e.g. "day2024-01-05:Assets:Cash".
func (d *AccountDay) Handle() string {
	return "day" + d.Key.String() + d.account.path
}

type dayTable struct {
	byKey   map[DayKey]*AccountDay
	ordered []*AccountDay
}

// table returns the day table, building it on first use. Concurrent first
// callers may each build one; only the first published table is ever seen.
func (a *Account) table() *dayTable {
	if t := a.days.Load(); t != nil {
		return t
	}
	t := a.buildDays()
	if a.days.CompareAndSwap(nil, t) {
		return t
	}
	return a.days.Load()
}

func (a *Account) buildDays() *dayTable {
	opening := &AccountDay{Key: Opening, account: a}
	t := &dayTable{byKey: map[DayKey]*AccountDay{Opening: opening}}

	for _, tr := range a.Transactions() {
		day, ok := t.byKey[tr.day]
		if !ok {
			day = &AccountDay{Key: tr.day, account: a}
			t.byKey[tr.day] = day
		}
		day.trIDs = append(day.trIDs, tr.ID)
		for _, s := range tr.Splits() {
			if s.accountID == a.ID {
				day.Net = day.Net.Add(s.Value)
			}
		}
	}

	t.ordered = make([]*AccountDay, 0, len(t.byKey))
	for _, day := range t.byKey {
		t.ordered = append(t.ordered, day)
	}
	slices.SortFunc(t.ordered, func(x, y *AccountDay) int {
		return x.Key.Compare(y.Key)
	})

	balance := decimal.Zero
	var prev *AccountDay
	for _, day := range t.ordered {
		day.prev = prev
		if prev != nil {
			prev.next = day
		}
		day.StartingBalance = balance
		balance = balance.Add(day.Net)
		day.EndingBalance = balance
		prev = day
	}
	return t
}

// Days returns the day table keyed by day.
func (a *Account) Days() map[DayKey]*AccountDay {
	src := a.table().byKey
	out := make(map[DayKey]*AccountDay, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// DayList returns the days in key order. The first one is always Opening.
func (a *Account) DayList() []*AccountDay {
	return slices.Clone(a.table().ordered)
}

// Day returns the bucket for key, if the account has one.
func (a *Account) Day(key DayKey) (*AccountDay, bool) {
	d, ok := a.table().byKey[key]
	return d, ok
}

// OwnBalanceOn returns the ending balance of the last own day not after d,
// ignoring children.
func (a *Account) OwnBalanceOn(d DayKey) decimal.Decimal {
	day := a.table().ordered[0]
	for day.next != nil && !day.next.Key.After(d) {
		day = day.next
	}
	return day.EndingBalance
}

// GetBalanceOn returns the balance of a and all its descendants at the end
// of day d. Pass Latest for the current balance.
func (a *Account) GetBalanceOn(d DayKey) decimal.Decimal {
	total := a.OwnBalanceOn(d)
	for _, c := range a.Children() {
		total = total.Add(c.GetBalanceOn(d))
	}
	return total
}

// OpeningBalance is the deep balance on the opening day.
func (a *Account) OpeningBalance() decimal.Decimal {
	return memoize(&a.opening, func() decimal.Decimal {
		return a.GetBalanceOn(Opening)
	})
}

// Balance is the deep balance including every day.
func (a *Account) Balance() decimal.Decimal {
	return memoize(&a.balance, func() decimal.Decimal {
		return a.GetBalanceOn(Latest)
	})
}

func memoize(cell *atomic.Pointer[decimal.Decimal], compute func() decimal.Decimal) decimal.Decimal {
	if v := cell.Load(); v != nil {
		return *v
	}
	v := compute()
	if cell.CompareAndSwap(nil, &v) {
		return v
	}
	return *cell.Load()
}

// RunningBalances returns the account's own balance at the start of the day
// and after each of the day's transactions.
func (d *AccountDay) RunningBalances() []decimal.Decimal {
	out := make([]decimal.Decimal, 0, len(d.trIDs)+1)
	balance := d.StartingBalance
	out = append(out, balance)
	for _, tr := range d.Transactions() {
		for _, s := range tr.Splits() {
			if s.accountID == d.account.ID {
				balance = balance.Add(s.Value)
			}
		}
		out = append(out, balance)
	}
	return out
}
