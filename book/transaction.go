package book

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a balanced set of splits posted on one date.
type Transaction struct {
	ID          string
	Description string
	Num         string
	CurrencyID  string
	DatePosted  time.Time
	DateEntered time.Time

	// Census marks a checkpoint transaction. CensusTarget is the balance the
	// touched accounts are expected to reach on its day, when given.
	Census       bool
	CensusTarget *decimal.Decimal

	book     *Book
	splitIDs []string
	day      DayKey

	marks
}

// Splits returns the splits ordered by id.
func (t *Transaction) Splits() []*Split {
	out := make([]*Split, len(t.splitIDs))
	for i, id := range t.splitIDs {
		out[i] = t.book.splits[id]
	}
	return out
}

// Day is the bucket the transaction falls in: Opening when any split touches
// an opening balance account, otherwise the posted date.
func (t *Transaction) Day() DayKey {
	return t.day
}

// PostedDay is the posted date, regardless of opening balances.
func (t *Transaction) PostedDay() DayKey {
	return DayOf(t.DatePosted)
}

// HasNum reports whether the transaction carries a number.
func (t *Transaction) HasNum() bool {
	return strings.TrimSpace(t.Num) != ""
}

// Handle returns "tr<num>" for uniquely numbered transactions and
// "id<id>" otherwise.
func (t *Transaction) Handle() string {
	if t.HasNum() && len(t.book.trsByNum[t.Num]) == 1 {
		return "tr" + t.Num
	}
	return "id" + t.ID
}

// Value is the sum of the split values, zero for a balanced transaction.
func (t *Transaction) Value() decimal.Decimal {
	sum := decimal.Zero
	for _, s := range t.Splits() {
		sum = sum.Add(s.Value)
	}
	return sum
}

// compareTransactions orders by posted date, then entry date, then id.
func compareTransactions(a, b *Transaction) int {
	if c := a.DatePosted.Compare(b.DatePosted); c != 0 {
		return c
	}
	if c := a.DateEntered.Compare(b.DateEntered); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

// Split is one leg of a transaction.
type Split struct {
	ID             string
	Memo           string
	ReconcileState string
	Value          decimal.Decimal
	Quantity       decimal.Decimal

	book          *Book
	accountID     string
	transactionID string

	marks
}

func (s *Split) Account() *Account {
	return s.book.accounts[s.accountID]
}

func (s *Split) Transaction() *Transaction {
	return s.book.transactions[s.transactionID]
}

// Handle returns "id<id>".
func (s *Split) Handle() string {
	return "id" + s.ID
}

// Commodity is a currency or security.
type Commodity struct {
	Space  string
	Symbol string
}
