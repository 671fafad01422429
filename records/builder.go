package records

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NewGUID returns a fresh id in the GnuCash form (32 lowercase hex digits).
func NewGUID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Builder assembles a consistent record store in code. It is used by the
// synthetic book generator and by tests.
type Builder struct {
	recs     Records
	currency string
	rootID   string
}

// Leg is a split to post through Builder.Post.
type Leg struct {
	AccountID string
	Value     decimal.Decimal
	Memo      string
}

// NewLeg creates a leg from a decimal string such as "-12.50". It panics on
// malformed amounts, the builder only ever sees literals.
func NewLeg(accountID, value string) Leg {
	return Leg{AccountID: accountID, Value: decimal.RequireFromString(value)}
}

// NewBuilder starts a book with a ROOT account and the given currency.
func NewBuilder(currency string) *Builder {
	b := &Builder{currency: currency}
	b.recs.BookID = NewGUID()
	b.recs.Commodities = append(b.recs.Commodities, Commodity{Space: "ISO4217", Symbol: currency})
	b.rootID = NewGUID()
	b.recs.Accounts = append(b.recs.Accounts, Account{
		ID:   b.rootID,
		Name: "Root Account",
		Type: "ROOT",
	})
	return b
}

// Root returns the id of the ROOT account.
func (b *Builder) Root() string {
	return b.rootID
}

// Account adds an account under parentID and returns its id.
func (b *Builder) Account(parentID, name, typ string) string {
	id := NewGUID()
	b.recs.Accounts = append(b.recs.Accounts, Account{
		ID:           id,
		Name:         name,
		Type:         typ,
		ParentID:     parentID,
		CommodityID:  b.currency,
		CommoditySCU: 100,
	})
	return id
}

// OpeningAccount adds an account flagged as holding opening balances.
func (b *Builder) OpeningAccount(parentID, name string) string {
	id := b.Account(parentID, name, "EQUITY")
	b.recs.Accounts[len(b.recs.Accounts)-1].OpeningBalance = true
	return id
}

// Post adds a transaction and returns its id. Quantities mirror values.
func (b *Builder) Post(posted time.Time, num, description string, legs ...Leg) string {
	tr := Transaction{
		ID:          NewGUID(),
		Description: description,
		Num:         num,
		CurrencyID:  b.currency,
		DatePosted:  posted,
		DateEntered: posted,
	}
	for _, leg := range legs {
		tr.Splits = append(tr.Splits, Split{
			ID:             NewGUID(),
			AccountID:      leg.AccountID,
			Memo:           leg.Memo,
			ReconcileState: "n",
			Value:          leg.Value,
			Quantity:       leg.Value,
		})
	}
	b.recs.Transactions = append(b.recs.Transactions, tr)
	return tr.ID
}

// Records returns the assembled store. The builder must not be used after.
func (b *Builder) Records() *Records {
	return &b.recs
}
