package records_test

import (
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"

	"github.com/robinvdvleuten/gnucash/records"
)

func TestBuilder(t *testing.T) {
	b := records.NewBuilder("EUR")
	assets := b.Account(b.Root(), "Assets", "ASSET")
	cash := b.Account(assets, "Cash", "CASH")
	equity := b.OpeningAccount(b.Root(), "Opening Balances")

	b.Post(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "001", "opening",
		records.NewLeg(cash, "100"),
		records.NewLeg(equity, "-100"),
	)

	recs := b.Records()

	assert.Equal(t, records.Stats{Commodities: 1, Accounts: 4, Transactions: 1, Splits: 2}, recs.Stats())
	assert.Equal(t, "ROOT", recs.Accounts[0].Type)
	assert.Equal(t, "", recs.Accounts[0].ParentID)
	assert.Equal(t, assets, recs.Accounts[2].ParentID)
	assert.True(t, recs.Accounts[3].OpeningBalance)
	assert.Equal(t, "EUR", recs.Accounts[1].CommodityID)
	assert.Equal(t, "-100", recs.Transactions[0].Splits[1].Value.String())
}

func TestNewGUID(t *testing.T) {
	a, b := records.NewGUID(), records.NewGUID()
	assert.Equal(t, 32, len(a))
	assert.NotEqual(t, a, b)
}
