package book_test

import (
	"sync"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/records"
)

func TestDaysOpeningBucket(t *testing.T) {
	recs := sample()
	recs.Transactions = recs.Transactions[:1]
	recs.Transactions[0].DatePosted = date("2024-01-05")
	b := build(t, recs)

	cash, err := b.AcByPath(":Assets:Cash")
	assert.NoError(t, err)

	days := cash.Days()
	assert.Equal(t, 1, len(days))
	opening, ok := days[book.Opening]
	assert.True(t, ok)
	assert.Equal(t, "100", opening.Net.String())
	assert.Equal(t, "100", opening.EndingBalance.String())

	// Cash has no date buckets because the only transaction touches the
	// opening balance account.
	_, ok = cash.Day(book.Day(2024, 1, 5))
	assert.False(t, ok)

	assert.Equal(t, "100", cash.OpeningBalance().String())
	assert.Equal(t, "100", cash.Balance().String())
}

func TestDaysWithPostedDate(t *testing.T) {
	recs := sample()
	recs.Accounts[4].OpeningBalance = false
	recs.Transactions = recs.Transactions[:1]
	recs.Transactions[0].DatePosted = date("2024-01-05")
	b := build(t, recs)

	cash, _ := b.AcByPath(":Assets:Cash")
	var keys []string
	for _, d := range cash.DayList() {
		keys = append(keys, d.Key.String())
	}
	assert.Equal(t, []string{"", "2024-01-05"}, keys)
	assert.Equal(t, "0", cash.OpeningBalance().String())
	assert.Equal(t, "100", cash.Balance().String())
}

func TestGetBalanceOn(t *testing.T) {
	recs := sample()
	recs.Transactions = append(recs.Transactions, records.Transaction{
		ID: "t3", Num: "003", DatePosted: date("2024-02-01"), DateEntered: date("2024-02-01"),
		Splits: []records.Split{{ID: "s5", AccountID: "cash", Value: dec("50")}},
	})
	b := build(t, recs)
	cash, _ := b.AcByPath(":Assets:Cash")
	assets, _ := b.AcByPath(":Assets")

	tests := []struct {
		name     string
		day      book.DayKey
		expected string
	}{
		{"Opening", book.Opening, "100"},
		{"BeforeFirstDate", book.Day(2024, 1, 4), "100"},
		{"OnDate", book.Day(2024, 1, 5), "125"},
		{"Between", book.Day(2024, 1, 10), "125"},
		{"OnLastDate", book.Day(2024, 2, 1), "175"},
		{"Latest", book.Latest, "175"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cash.GetBalanceOn(tt.day).String())
			assert.Equal(t, tt.expected, assets.GetBalanceOn(tt.day).String())
		})
	}

	assert.Equal(t, "0", assets.OwnBalanceOn(book.Latest).String())
	// t3 has a single split, so the book as a whole is off by 50.
	assert.Equal(t, "50", b.Root().Balance().String())
}

func TestDayRoundTrip(t *testing.T) {
	b := build(t, sample())

	for _, acc := range b.Accounts() {
		days := acc.DayList()
		assert.True(t, days[0].Key.IsOpening(), "first day of %s", acc.Path())
		assert.Zero(t, days[0].Prev())

		for i, day := range days {
			assert.Equal(t, day.StartingBalance.Add(day.Net).String(), day.EndingBalance.String())

			own := decimal.Zero
			for _, tr := range day.Transactions() {
				for _, s := range tr.Splits() {
					if s.Account() == acc {
						own = own.Add(s.Value)
					}
				}
			}
			assert.Equal(t, own.String(), day.Net.String())

			if i > 0 {
				assert.True(t, days[i-1] == day.Prev())
				assert.True(t, days[i-1].Next() == day)
				assert.Equal(t, days[i-1].EndingBalance.String(), day.StartingBalance.String())
				assert.True(t, days[i-1].Key.Before(day.Key))
			}
		}
		assert.Zero(t, days[len(days)-1].Next())
	}
}

func TestDeepBalanceAdditivity(t *testing.T) {
	b := build(t, sample())

	for _, acc := range b.Accounts() {
		for _, d := range []book.DayKey{book.Opening, book.Day(2024, 1, 3), book.Latest} {
			sum := acc.OwnBalanceOn(d)
			for _, c := range acc.Children() {
				sum = sum.Add(c.GetBalanceOn(d))
			}
			assert.Equal(t, sum.String(), acc.GetBalanceOn(d).String())
		}
	}

	assert.Equal(t, "0", b.Root().Balance().String())
}

func TestEmptyAccountHasOpeningDay(t *testing.T) {
	b := build(t, sample())
	assets, _ := b.AcByPath(":Assets")
	days := assets.DayList()
	assert.Equal(t, 1, len(days))
	assert.True(t, days[0].Key.IsOpening())
	assert.True(t, days[0].Net.IsZero())
}

func TestDaysConcurrentFirstAccess(t *testing.T) {
	b := build(t, sample())
	cash, _ := b.AcByPath(":Assets:Cash")

	const readers = 16
	tables := make([]*book.AccountDay, readers)
	balances := make([]string, readers)

	var wg sync.WaitGroup
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tables[i] = cash.DayList()[0]
			balances[i] = cash.Balance().String()
		}(i)
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		assert.True(t, tables[0] == tables[i], "reader %d saw a different day table", i)
		assert.Equal(t, balances[0], balances[i])
	}
}

func TestAccountDayHandle(t *testing.T) {
	b := build(t, sample())
	cash, _ := b.AcByPath(":Assets:Cash")
	days := cash.DayList()
	assert.Equal(t, "day:Assets:Cash", days[0].Handle())
	assert.Equal(t, "day2024-01-05:Assets:Cash", days[1].Handle())
	assert.True(t, days[0].Account() == cash)
}
