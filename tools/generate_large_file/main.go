// Large GnuCash File Generator
//
// This tool generates a large compressed GnuCash XML file for performance
// testing and profiling. It models a members' association: dues invoices on
// per member debitor accounts, payments, prepayments on creditor accounts,
// bar sales and the occasional cash census.
//
// Usage:
//
//	go run main.go > large.gnucash
//	go run main.go 200000 > large.gnucash  # Specify the number of transactions
//	go run main.go 200000 large.gnucash
package main

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/gncxml"
	"github.com/robinvdvleuten/gnucash/records"
)

const (
	defaultTransactions = 50000
	defaultMembers      = 400
)

var (
	expenses = []string{"Beer", "Soda", "Snacks", "Rent", "Cleaning", "Insurance"}

	descriptions = []string{
		"Weekly bar", "Drinks after training", "Tournament", "Members' evening",
		"Friday bar", "Board meeting",
	}
)

type book struct {
	b *records.Builder

	cash, bank, opening, dues, bar string
	expenses                       []string
	debitors, creditors            []string
}

func newBook(members int) *book {
	b := records.NewBuilder("EUR")
	bk := &book{b: b}

	assets := b.Account(b.Root(), "Assets", "ASSET")
	bk.cash = b.Account(assets, "Cash", "CASH")
	bk.bank = b.Account(assets, "Bank", "BANK")
	debitors := b.Account(assets, "Debitors", "RECEIVABLE")

	liabilities := b.Account(b.Root(), "Liabilities", "LIABILITY")
	creditors := b.Account(liabilities, "Creditors", "PAYABLE")

	equity := b.Account(b.Root(), "Equity", "EQUITY")
	bk.opening = b.OpeningAccount(equity, "Opening Balances")

	income := b.Account(b.Root(), "Income", "INCOME")
	bk.dues = b.Account(income, "Dues", "INCOME")
	bk.bar = b.Account(income, "Bar", "INCOME")

	expense := b.Account(b.Root(), "Expenses", "EXPENSE")
	for _, name := range expenses {
		bk.expenses = append(bk.expenses, b.Account(expense, name, "EXPENSE"))
	}

	for i := 0; i < members; i++ {
		name := fmt.Sprintf("member%04d", i)
		bk.debitors = append(bk.debitors, b.Account(debitors, name, "RECEIVABLE"))
		bk.creditors = append(bk.creditors, b.Account(creditors, name, "PAYABLE"))
	}
	return bk
}

func main() {
	target := defaultTransactions
	if len(os.Args) > 1 {
		if n, err := strconv.Atoi(os.Args[1]); err == nil {
			target = n
		}
	}

	var out io.Writer = os.Stdout
	if len(os.Args) > 2 {
		f, err := os.Create(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	bk := newBook(defaultMembers)
	date := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	num := 1
	post := func(description string, legs ...records.Leg) {
		bk.b.Post(date, fmt.Sprintf("%06d", num), description, legs...)
		num++
	}

	post("Opening balances",
		records.NewLeg(bk.cash, "250.00"),
		records.NewLeg(bk.bank, "12000.00"),
		records.NewLeg(bk.opening, "-12250.00"))

	cash := decimal.RequireFromString("250.00")

	for num <= target {
		member := rand.Intn(defaultMembers)

		switch rand.Intn(10) {
		case 0, 1, 2: // 30% - Dues invoice
			amount := randAmount(15, 60)
			post("Dues "+date.Format("January 2006"),
				records.NewLeg(bk.debitors[member], amount.StringFixed(2)),
				records.NewLeg(bk.dues, amount.Neg().StringFixed(2)))

		case 3, 4: // 20% - Payment by bank
			amount := randAmount(15, 60)
			post("Payment",
				records.NewLeg(bk.bank, amount.StringFixed(2)),
				records.NewLeg(bk.debitors[member], amount.Neg().StringFixed(2)))

		case 5: // 10% - Prepayment
			amount := randAmount(20, 100)
			post("Prepayment",
				records.NewLeg(bk.bank, amount.StringFixed(2)),
				records.NewLeg(bk.creditors[member], amount.Neg().StringFixed(2)))

		case 6, 7: // 20% - Bar sales in cash
			amount := randAmount(20, 400)
			cash = cash.Add(amount)
			post(descriptions[rand.Intn(len(descriptions))],
				records.NewLeg(bk.cash, amount.StringFixed(2)),
				records.NewLeg(bk.bar, amount.Neg().StringFixed(2)))

		case 8: // 10% - Expense from the bank
			amount := randAmount(10, 300)
			post("Purchase",
				records.NewLeg(bk.expenses[rand.Intn(len(bk.expenses))], amount.StringFixed(2)),
				records.NewLeg(bk.bank, amount.Neg().StringFixed(2)))

		case 9: // 10% - Cash census
			post("census "+cash.StringFixed(2),
				records.NewLeg(bk.cash, "0"))
		}

		// Advance the date every few transactions
		if rand.Intn(4) == 0 {
			date = date.AddDate(0, 0, 1)
		}
	}

	recs := bk.b.Records()
	if err := gncxml.EncodeGzip(out, recs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	stats := recs.Stats()
	fmt.Fprintf(os.Stderr, "\nGenerated %d accounts with %d transactions and %d splits\n",
		stats.Accounts, stats.Transactions, stats.Splits)
}

// Helper functions

func randAmount(min, max float64) decimal.Decimal {
	return decimal.NewFromFloat(min + rand.Float64()*(max-min)).Round(2)
}
