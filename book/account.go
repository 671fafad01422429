package book

import (
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"
)

// AccountType is the GnuCash account type.
type AccountType int

const (
	AccountTypeUnknown AccountType = iota
	AccountTypeRoot
	AccountTypeAsset
	AccountTypeBank
	AccountTypeCash
	AccountTypeReceivable
	AccountTypeStock
	AccountTypeMutual
	AccountTypeCurrency
	AccountTypeLiability
	AccountTypePayable
	AccountTypeCredit
	AccountTypeEquity
	AccountTypeIncome
	AccountTypeExpense
	AccountTypeTrading
)

var accountTypeNames = map[AccountType]string{
	AccountTypeRoot:       "ROOT",
	AccountTypeAsset:      "ASSET",
	AccountTypeBank:       "BANK",
	AccountTypeCash:       "CASH",
	AccountTypeReceivable: "RECEIVABLE",
	AccountTypeStock:      "STOCK",
	AccountTypeMutual:     "MUTUAL",
	AccountTypeCurrency:   "CURRENCY",
	AccountTypeLiability:  "LIABILITY",
	AccountTypePayable:    "PAYABLE",
	AccountTypeCredit:     "CREDIT",
	AccountTypeEquity:     "EQUITY",
	AccountTypeIncome:     "INCOME",
	AccountTypeExpense:    "EXPENSE",
	AccountTypeTrading:    "TRADING",
}

// String returns the GnuCash spelling of the type.
func (t AccountType) String() string {
	if name, ok := accountTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseAccountType parses a GnuCash type string such as "BANK".
func ParseAccountType(s string) (AccountType, bool) {
	for t, name := range accountTypeNames {
		if name == s {
			return t, true
		}
	}
	return AccountTypeUnknown, false
}

// MutationSign is the sign a split on this type of account is expected to
// have, or 0 when both directions are normal.
func (t AccountType) MutationSign() int {
	switch t {
	case AccountTypeExpense:
		return 1
	case AccountTypeIncome:
		return -1
	}
	return 0
}

// BalanceSign is the sign a healthy balance of this type has.
func (t AccountType) BalanceSign() int {
	switch t {
	case AccountTypeAsset, AccountTypeBank, AccountTypeCash, AccountTypeReceivable,
		AccountTypeStock, AccountTypeMutual, AccountTypeCurrency, AccountTypeExpense:
		return 1
	case AccountTypeLiability, AccountTypePayable, AccountTypeCredit,
		AccountTypeEquity, AccountTypeIncome:
		return -1
	}
	return 0
}

// Account is a node of the account tree. Relationships are kept as ids and
// resolved through the owning Book.
type Account struct {
	ID               string
	Name             string
	Type             AccountType
	Description      string
	Code             string
	CommodityID      string
	CommoditySCU     int
	IsOpeningBalance bool

	book      *Book
	parentID  string
	children  map[string]string // name -> id
	trIDs     []string
	splitIDs  []string
	path      string
	shortName string
	shortPath string

	days    atomic.Pointer[dayTable]
	opening atomic.Pointer[decimal.Decimal]
	balance atomic.Pointer[decimal.Decimal]

	marks
}

// IsRoot reports whether a is the ROOT account.
func (a *Account) IsRoot() bool {
	return a.parentID == ""
}

// Book returns the book the account belongs to.
func (a *Account) Book() *Book {
	return a.book
}

// Parent returns the parent account, nil for ROOT.
func (a *Account) Parent() *Account {
	if a.parentID == "" {
		return nil
	}
	return a.book.accounts[a.parentID]
}

// Child returns the child with the given name.
func (a *Account) Child(name string) (*Account, bool) {
	id, ok := a.children[name]
	if !ok {
		return nil, false
	}
	return a.book.accounts[id], true
}

// Children returns the direct children ordered by name.
func (a *Account) Children() []*Account {
	names := make([]string, 0, len(a.children))
	for name := range a.children {
		names = append(names, name)
	}
	slices.Sort(names)

	children := make([]*Account, len(names))
	for i, name := range names {
		children[i] = a.book.accounts[a.children[name]]
	}
	return children
}

// HasChildren reports whether any account has a as parent.
func (a *Account) HasChildren() bool {
	return len(a.children) > 0
}

// Descendants returns a and every account below it, depth first.
func (a *Account) Descendants() []*Account {
	out := []*Account{a}
	for _, c := range a.Children() {
		out = append(out, c.Descendants()...)
	}
	return out
}

// Depth is 0 for ROOT, 1 for its children and so on.
func (a *Account) Depth() int {
	return strings.Count(a.path, ":")
}

// Path is the ":"-joined chain of names from the root, e.g. ":Assets:Cash".
// The root's path is empty.
func (a *Account) Path() string {
	return a.path
}

// ShortName is the shortest prefix of Name that tells it apart from its
// siblings. An only child has an empty short name.
func (a *Account) ShortName() string {
	return a.shortName
}

// ShortPath is Path built from short names.
func (a *Account) ShortPath() string {
	return a.shortPath
}

func (a *Account) MutationSign() int { return a.Type.MutationSign() }
func (a *Account) BalanceSign() int  { return a.Type.BalanceSign() }

// Handle returns the path, or ":" for ROOT.
func (a *Account) Handle() string {
	if a.path == "" {
		return ":"
	}
	return a.path
}

// Transactions returns the transactions with at least one split on a, in
// chronological order.
func (a *Account) Transactions() []*Transaction {
	out := make([]*Transaction, len(a.trIDs))
	for i, id := range a.trIDs {
		out[i] = a.book.transactions[id]
	}
	return out
}

// Mutations returns the splits posted on a, in chronological order.
func (a *Account) Mutations() []*Split {
	out := make([]*Split, len(a.splitIDs))
	for i, id := range a.splitIDs {
		out[i] = a.book.splits[id]
	}
	return out
}

// DeepMutations returns the mutations of a and all its descendants.
func (a *Account) DeepMutations() []*Split {
	var out []*Split
	for _, d := range a.Descendants() {
		out = append(out, d.Mutations()...)
	}
	return out
}

// DeepTransactions returns the distinct transactions touching a or any of
// its descendants, in chronological order.
func (a *Account) DeepTransactions() []*Transaction {
	seen := make(map[string]struct{})
	var out []*Transaction
	for _, s := range a.DeepMutations() {
		if _, ok := seen[s.transactionID]; ok {
			continue
		}
		seen[s.transactionID] = struct{}{}
		out = append(out, s.Transaction())
	}
	slices.SortFunc(out, compareTransactions)
	return out
}

// assignShortNames gives every child of a the shortest distinguishing prefix
// of its name. A name that is a prefix of a sibling's name keeps its full
// name.
func (a *Account) assignShortNames() {
	type group struct {
		prefix string
		accs   []*Account
	}
	todo := []group{{prefix: "", accs: a.Children()}}
	for len(todo) > 0 {
		g := todo[0]
		todo = todo[1:]
		if len(g.accs) == 1 {
			g.accs[0].shortName = g.prefix
			continue
		}

		var next []group
		index := make(map[string]int)
		for _, acc := range g.accs {
			name := []rune(acc.Name)
			n := len([]rune(g.prefix))
			if len(name) <= n {
				acc.shortName = acc.Name
				continue
			}
			p := g.prefix + string(name[n])
			i, ok := index[p]
			if !ok {
				i = len(next)
				index[p] = i
				next = append(next, group{prefix: p})
			}
			next[i].accs = append(next[i].accs, acc)
		}
		todo = append(todo, next...)
	}
}
