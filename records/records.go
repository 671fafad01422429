// Package records holds the flat record store a GnuCash export decodes into.
//
// Records reference each other by id only. The book package resolves those
// ids into a linked graph and is the only place the references are checked,
// so a Records value may well be inconsistent.
package records

import (
	"time"

	"github.com/shopspring/decimal"
)

// Commodity is a currency or security. Accounts refer to it by Symbol.
type Commodity struct {
	Space  string
	Symbol string
}

// Account is a single node of the account tree as exported.
type Account struct {
	ID             string
	Name           string
	Type           string
	ParentID       string // empty for the ROOT account
	Description    string
	Code           string
	CommodityID    string
	CommoditySCU   int
	OpeningBalance bool
}

// Split is one leg of a transaction.
type Split struct {
	ID             string
	AccountID      string
	Memo           string
	ReconcileState string
	Value          decimal.Decimal
	Quantity       decimal.Decimal
}

// Transaction groups splits posted on the same date.
type Transaction struct {
	ID          string
	Description string
	Num         string
	CurrencyID  string
	DatePosted  time.Time
	DateEntered time.Time
	Splits      []Split
}

// Records is the complete flat export of a book. Slices keep file order.
type Records struct {
	BookID       string
	Commodities  []Commodity
	Accounts     []Account
	Transactions []Transaction
}

// Stats summarizes the store for diagnostics.
type Stats struct {
	Commodities  int
	Accounts     int
	Transactions int
	Splits       int
}

// Stats counts the records.
func (r *Records) Stats() Stats {
	s := Stats{
		Commodities:  len(r.Commodities),
		Accounts:     len(r.Accounts),
		Transactions: len(r.Transactions),
	}
	for i := range r.Transactions {
		s.Splits += len(r.Transactions[i].Splits)
	}
	return s
}
