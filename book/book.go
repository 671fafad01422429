// Package book links a GnuCash record store into a navigable graph and
// derives per-day account balances from it.
//
// # Architecture
//
// A Book owns every Account, Transaction and Split in id keyed tables. The
// nodes themselves only store ids of the nodes they relate to and resolve
// them through a back pointer to the Book, so the graph has no pointer
// cycles and is freed as a whole.
//
// Build is the single writer. It validates the account tree, resolves every
// reference and fails as a whole on the first violation. Afterwards the
// graph is read-only, apart from three lazily computed values per account
// (the day table, the opening balance and the balance). Those are computed
// outside any lock and published with a compare-and-swap, so concurrent
// readers may duplicate work but always observe one consistent value.
//
// Check marks (Object.Mark) are the only other mutation and are guarded by a
// per-object mutex.
package book

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/gnucash/records"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

// Book is the linked ledger graph.
type Book struct {
	ID string

	config       *Config
	root         *Account
	accounts     map[string]*Account
	transactions map[string]*Transaction
	splits       map[string]*Split
	commodities  map[string]*Commodity
	trOrder      []string
	trsByNum     map[string][]string
}

// Build links the record store into a Book. A nil cfg is taken from ctx.
func Build(ctx context.Context, recs *records.Records, cfg *Config) (*Book, error) {
	timer := telemetry.StartTimer(ctx, "book.build")
	defer timer.End()

	if cfg == nil {
		cfg = ConfigFromContext(ctx)
	}

	b := &Book{
		ID:           recs.BookID,
		config:       cfg,
		accounts:     make(map[string]*Account, len(recs.Accounts)),
		transactions: make(map[string]*Transaction, len(recs.Transactions)),
		splits:       make(map[string]*Split),
		commodities:  make(map[string]*Commodity, len(recs.Commodities)),
		trsByNum:     make(map[string][]string),
	}

	for _, c := range recs.Commodities {
		b.commodities[c.Symbol] = &Commodity{Space: c.Space, Symbol: c.Symbol}
	}

	accTimer := timer.Child("book.accounts")
	accTimer.Count(len(recs.Accounts), "accounts")
	err := b.linkAccounts(recs.Accounts)
	accTimer.End()
	if err != nil {
		return nil, err
	}

	if err := b.markOpeningBalance(); err != nil {
		return nil, err
	}

	trTimer := timer.Child("book.transactions")
	trTimer.Count(len(recs.Transactions), "transactions")
	err = b.linkTransactions(ctx, recs.Transactions)
	trTimer.End()
	if err != nil {
		return nil, err
	}

	return b, nil
}

func (b *Book) linkAccounts(recs []records.Account) error {
	for i := range recs {
		r := &recs[i]
		if _, dup := b.accounts[r.ID]; dup {
			return NewStructureError(r.ID, "duplicate account id")
		}
		typ, ok := ParseAccountType(r.Type)
		if !ok {
			return NewStructureError(r.ID, "unknown account type "+r.Type)
		}
		b.accounts[r.ID] = &Account{
			ID:               r.ID,
			Name:             r.Name,
			Type:             typ,
			Description:      r.Description,
			Code:             r.Code,
			CommodityID:      r.CommodityID,
			CommoditySCU:     r.CommoditySCU,
			IsOpeningBalance: r.OpeningBalance,
			book:             b,
			parentID:         r.ParentID,
			children:         make(map[string]string),
		}
	}

	for i := range recs {
		acc := b.accounts[recs[i].ID]
		if acc.parentID == "" {
			if acc.Type != AccountTypeRoot {
				return NewStructureError(acc.ID, "account without parent is not of type ROOT")
			}
			if b.root != nil {
				return NewStructureError(acc.ID, "second ROOT account, first is "+b.root.ID)
			}
			b.root = acc
			continue
		}
		if acc.Type == AccountTypeRoot {
			return NewStructureError(acc.ID, "ROOT account has a parent")
		}
		parent, ok := b.accounts[acc.parentID]
		if !ok {
			return NewParentReferenceError(acc.ID, acc.parentID)
		}
		if _, dup := parent.children[acc.Name]; dup {
			return NewDuplicateNameError(acc.ID, parent.ID, b.pathByParents(parent), acc.Name)
		}
		parent.children[acc.Name] = acc.ID
		if acc.CommodityID == "" {
			return NewMissingCommodityError(acc.ID, acc.Name)
		}
	}

	if b.root == nil {
		return NewStructureError("", "no ROOT account")
	}

	// Parent chains that never reach ROOT are cycles.
	var visit func(acc *Account, path, short string)
	reached := 0
	visit = func(acc *Account, path, short string) {
		reached++
		acc.path = path
		acc.shortPath = short
		acc.assignShortNames()
		for _, c := range acc.Children() {
			visit(c, path+":"+c.Name, short+":"+c.shortName)
		}
	}
	visit(b.root, "", "")
	if reached != len(b.accounts) {
		for _, r := range recs {
			if acc := b.accounts[r.ID]; acc != b.root && acc.path == "" {
				return NewStructureError(acc.ID, "account is not reachable from ROOT")
			}
		}
	}

	return nil
}

// pathByParents derives a path before the tree is validated, stopping at
// missing parents and cycles.
func (b *Book) pathByParents(acc *Account) string {
	var names []string
	seen := make(map[string]bool)
	for acc != nil && acc.parentID != "" && !seen[acc.ID] {
		seen[acc.ID] = true
		names = append([]string{acc.Name}, names...)
		acc = b.accounts[acc.parentID]
	}
	if len(names) == 0 {
		return ""
	}
	return ":" + strings.Join(names, ":")
}

func (b *Book) markOpeningBalance() error {
	if b.config.OpeningBalance == "" {
		return nil
	}
	acc, err := b.AcByPath(b.config.OpeningBalance)
	if err != nil {
		return err
	}
	acc.IsOpeningBalance = true
	return nil
}

func (b *Book) linkTransactions(ctx context.Context, recs []records.Transaction) error {
	touched := make(map[*Account]struct{})

	for i := range recs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		r := &recs[i]
		if _, dup := b.transactions[r.ID]; dup {
			return NewStructureError(r.ID, "duplicate transaction id")
		}
		tr := &Transaction{
			ID:          r.ID,
			Description: r.Description,
			Num:         r.Num,
			CurrencyID:  r.CurrencyID,
			DatePosted:  r.DatePosted,
			DateEntered: r.DateEntered,
			book:        b,
			day:         DayOf(r.DatePosted),
		}

		for j := range r.Splits {
			sr := &r.Splits[j]
			acc, ok := b.accounts[sr.AccountID]
			if !ok {
				return NewSplitReferenceError(sr.ID, sr.AccountID)
			}
			if _, dup := b.splits[sr.ID]; dup {
				return NewStructureError(sr.ID, "duplicate split id")
			}
			s := &Split{
				ID:             sr.ID,
				Memo:           sr.Memo,
				ReconcileState: sr.ReconcileState,
				Value:          sr.Value,
				Quantity:       sr.Quantity,
				book:           b,
				accountID:      acc.ID,
				transactionID:  tr.ID,
			}
			b.splits[s.ID] = s
			tr.splitIDs = append(tr.splitIDs, s.ID)
			acc.splitIDs = append(acc.splitIDs, s.ID)
			if n := len(acc.trIDs); n == 0 || acc.trIDs[n-1] != tr.ID {
				acc.trIDs = append(acc.trIDs, tr.ID)
			}
			if acc.IsOpeningBalance {
				tr.day = Opening
			}
			touched[acc] = struct{}{}
		}
		slices.Sort(tr.splitIDs)

		if err := b.applyCensus(tr); err != nil {
			return err
		}

		b.transactions[tr.ID] = tr
		b.trOrder = append(b.trOrder, tr.ID)
		if tr.HasNum() {
			b.trsByNum[tr.Num] = append(b.trsByNum[tr.Num], tr.ID)
		}
	}

	b.sortTransactionIDs(b.trOrder)
	for _, ids := range b.trsByNum {
		b.sortTransactionIDs(ids)
	}
	for acc := range touched {
		b.sortTransactionIDs(acc.trIDs)
		slices.SortStableFunc(acc.splitIDs, func(x, y string) int {
			return compareTransactions(b.splits[x].Transaction(), b.splits[y].Transaction())
		})
	}
	return nil
}

func (b *Book) applyCensus(tr *Transaction) error {
	re := b.config.Census
	if re == nil {
		return nil
	}
	m := re.FindStringSubmatch(tr.Description)
	if m == nil {
		return nil
	}
	tr.Census = true

	group := re.SubexpIndex("amount")
	if group < 0 && len(m) > 1 {
		group = 1
	}
	if group < 0 || m[group] == "" {
		return nil
	}
	raw := strings.ReplaceAll(m[group], ",", ".")
	target, err := decimal.NewFromString(raw)
	if err != nil {
		return NewParseError(m[group], "census amount of transaction "+tr.ID, err)
	}
	tr.CensusTarget = &target
	return nil
}

func (b *Book) sortTransactionIDs(ids []string) {
	slices.SortFunc(ids, func(x, y string) int {
		return compareTransactions(b.transactions[x], b.transactions[y])
	})
}

// Config returns the settings the book was built with.
func (b *Book) Config() *Config {
	return b.config
}

// Root returns the ROOT account.
func (b *Book) Root() *Account {
	return b.root
}

// Account returns the account with the given id.
func (b *Book) Account(id string) (*Account, bool) {
	a, ok := b.accounts[id]
	return a, ok
}

// Transaction returns the transaction with the given id.
func (b *Book) Transaction(id string) (*Transaction, bool) {
	t, ok := b.transactions[id]
	return t, ok
}

// Split returns the split with the given id.
func (b *Book) Split(id string) (*Split, bool) {
	s, ok := b.splits[id]
	return s, ok
}

// Commodity returns the commodity with the given symbol.
func (b *Book) Commodity(symbol string) (*Commodity, bool) {
	c, ok := b.commodities[symbol]
	return c, ok
}

// Commodities returns every commodity ordered by symbol.
func (b *Book) Commodities() []*Commodity {
	symbols := maps.Keys(b.commodities)
	slices.Sort(symbols)
	out := make([]*Commodity, len(symbols))
	for i, sym := range symbols {
		out[i] = b.commodities[sym]
	}
	return out
}

// Accounts returns every account ordered by path, ROOT first.
func (b *Book) Accounts() []*Account {
	return b.root.Descendants()
}

// Transactions returns every transaction in chronological order.
func (b *Book) Transactions() []*Transaction {
	out := make([]*Transaction, len(b.trOrder))
	for i, id := range b.trOrder {
		out[i] = b.transactions[id]
	}
	return out
}

// Splits returns every split ordered by transaction, then split id.
func (b *Book) Splits() []*Split {
	out := make([]*Split, 0, len(b.splits))
	for _, tr := range b.Transactions() {
		out = append(out, tr.Splits()...)
	}
	return out
}

// AcByPath looks up an account by ":"-separated path. Empty segments are
// ignored, so ":Assets:Cash" and "Assets:Cash" are the same account.
func (b *Book) AcByPath(path string) (*Account, error) {
	acc := b.root
	for _, name := range strings.Split(path, ":") {
		if name == "" {
			continue
		}
		child, ok := acc.Child(name)
		if !ok {
			return nil, NewAccountNotFoundError(name, acc)
		}
		acc = child
	}
	return acc, nil
}

// TrsByNum returns transaction ids grouped by number. Unnumbered
// transactions are not included.
func (b *Book) TrsByNum() map[string][]string {
	out := make(map[string][]string, len(b.trsByNum))
	for num, ids := range b.trsByNum {
		out[num] = slices.Clone(ids)
	}
	return out
}

// TrByNum returns the single transaction carrying num.
func (b *Book) TrByNum(num string) (*Transaction, error) {
	ids := b.trsByNum[num]
	switch len(ids) {
	case 0:
		return nil, NewNotFoundError("transaction number", num)
	case 1:
		return b.transactions[ids[0]], nil
	}
	return nil, NewAmbiguousError("transaction number", num, slices.Clone(ids))
}
