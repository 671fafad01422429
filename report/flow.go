// Package report derives read-only views from a book: money flows over a
// period, balance trees, member statements and check listings.
package report

import (
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/gnucash/book"
)

// Filter selects transactions. Zero fields do not restrict: a nil From is
// the root account, an Opening Begin has no lower bound and an End that is
// Opening or Latest has no upper bound.
type Filter struct {
	From  *book.Account
	Begin book.DayKey
	End   book.DayKey
}

func (f Filter) contains(tr *book.Transaction) bool {
	posted := tr.PostedDay()
	if !f.Begin.IsOpening() && posted.Before(f.Begin) {
		return false
	}
	if !f.End.IsOpening() && posted.After(f.End) {
		return false
	}
	return true
}

// Transactions returns the transactions touching f.From or its descendants
// posted within the period, in chronological order.
func Transactions(b *book.Book, f Filter) []*book.Transaction {
	from := f.From
	if from == nil {
		from = b.Root()
	}
	var out []*book.Transaction
	for _, tr := range from.DeepTransactions() {
		if f.contains(tr) {
			out = append(out, tr)
		}
	}
	return out
}

// Flow is the money that moved into (Debit) and out of (Credit) an account
// and its descendants. Credit is zero or negative.
type Flow struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Net is Debit plus Credit.
func (f Flow) Net() decimal.Decimal {
	return f.Debit.Add(f.Credit)
}

// FlowTable holds a flow for every account of a book.
type FlowTable struct {
	book  *book.Book
	flows map[string]*Flow
}

// Get returns the flow of acc.
func (t *FlowTable) Get(acc *book.Account) Flow {
	if f, ok := t.flows[acc.ID]; ok {
		return *f
	}
	return Flow{}
}

// FlowRow is an account with its flow.
type FlowRow struct {
	Account *book.Account
	Flow
}

// Rows returns one row per account ordered by path.
func (t *FlowTable) Rows() []FlowRow {
	accounts := t.book.Accounts()
	rows := make([]FlowRow, len(accounts))
	for i, acc := range accounts {
		rows[i] = FlowRow{Account: acc, Flow: t.Get(acc)}
	}
	return rows
}

// Flows sums every split of the selected transactions onto its account and
// each of the account's ancestors.
func Flows(b *book.Book, f Filter) *FlowTable {
	return flowTable(b, Transactions(b, f))
}

func flowTable(b *book.Book, trs []*book.Transaction) *FlowTable {
	t := &FlowTable{book: b, flows: make(map[string]*Flow)}
	for _, acc := range b.Accounts() {
		t.flows[acc.ID] = &Flow{}
	}

	for _, tr := range trs {
		for _, s := range tr.Splits() {
			for acc := s.Account(); acc != nil; acc = acc.Parent() {
				flow := t.flows[acc.ID]
				if s.Value.Sign() >= 0 {
					flow.Debit = flow.Debit.Add(s.Value)
				} else {
					flow.Credit = flow.Credit.Add(s.Value)
				}
			}
		}
	}
	return t
}

// BalanceAt is the flow of every transaction posted up to and including day.
// On Opening it holds the opening balance transactions only.
func BalanceAt(b *book.Book, day book.DayKey) *FlowTable {
	if !day.IsOpening() {
		return Flows(b, Filter{End: day})
	}
	var trs []*book.Transaction
	for _, tr := range b.Transactions() {
		if tr.Day().IsOpening() {
			trs = append(trs, tr)
		}
	}
	return flowTable(b, trs)
}

// OpeningFlow is the flow of the transactions touching the opening balance
// account.
func OpeningFlow(b *book.Book, opening *book.Account) *FlowTable {
	return Flows(b, Filter{From: opening})
}

// Node is an account in a balance tree.
type Node struct {
	Account  *book.Account
	Depth    int
	Balance  decimal.Decimal
	Children []*Node
}

// Tree returns the deep balances of from and its descendants on day.
// maxDepth limits the depth below from; 0 means unlimited.
func Tree(from *book.Account, day book.DayKey, maxDepth int) *Node {
	return tree(from, day, 0, maxDepth)
}

func tree(acc *book.Account, day book.DayKey, depth, maxDepth int) *Node {
	n := &Node{Account: acc, Depth: depth, Balance: acc.GetBalanceOn(day)}
	if maxDepth > 0 && depth >= maxDepth {
		return n
	}
	for _, c := range acc.Children() {
		n.Children = append(n.Children, tree(c, day, depth+1, maxDepth))
	}
	return n
}

// Walk visits n and its descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Mutations returns the deep mutations of acc within the period of f,
// in chronological order.
func Mutations(acc *book.Account, f Filter) []*book.Split {
	var out []*book.Split
	for _, s := range acc.DeepMutations() {
		if f.contains(s.Transaction()) {
			out = append(out, s)
		}
	}
	slices.SortStableFunc(out, func(x, y *book.Split) int {
		return x.Transaction().DatePosted.Compare(y.Transaction().DatePosted)
	})
	return out
}
