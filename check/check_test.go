package check_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/check"
	"github.com/robinvdvleuten/gnucash/records"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.Add(12 * time.Hour)
}

func split(id, account, value string) records.Split {
	return records.Split{ID: id, AccountID: account, Value: decimal.RequireFromString(value)}
}

func tx(id, num, day, description string, splits ...records.Split) records.Transaction {
	return records.Transaction{
		ID: id, Num: num, Description: description,
		DatePosted: date(day), DateEntered: date(day),
		Splits: splits,
	}
}

func clubRecords() *records.Records {
	return &records.Records{
		Accounts: []records.Account{
			{ID: "root", Name: "Root Account", Type: "ROOT"},
			{ID: "assets", Name: "Assets", Type: "ASSET", ParentID: "root", CommodityID: "EUR"},
			{ID: "cash", Name: "Cash", Type: "CASH", ParentID: "assets", CommodityID: "EUR"},
			{ID: "equity", Name: "Equity", Type: "EQUITY", ParentID: "root", CommodityID: "EUR"},
			{ID: "opening", Name: "Opening", Type: "EQUITY", ParentID: "equity", CommodityID: "EUR", OpeningBalance: true},
			{ID: "income", Name: "Income", Type: "INCOME", ParentID: "root", CommodityID: "EUR"},
			{ID: "expenses", Name: "Expenses", Type: "EXPENSE", ParentID: "root", CommodityID: "EUR"},
		},
		Transactions: []records.Transaction{
			tx("t1", "001", "2024-01-05", "opening", split("s1", "cash", "100"), split("s2", "opening", "-100")),
		},
	}
}

func buildBook(t *testing.T, recs *records.Records, opts book.Options) *book.Book {
	t.Helper()
	cfg, err := book.ConfigFromOptions(opts)
	assert.NoError(t, err)
	b, err := book.Build(context.Background(), recs, cfg)
	assert.NoError(t, err)
	return b
}

func handles(objs []book.Object) []string {
	out := make([]string, 0, len(objs))
	for _, o := range objs {
		out = append(out, o.Handle())
	}
	return out
}

func TestMissingSplitsScenario(t *testing.T) {
	recs := clubRecords()
	recs.Transactions = append(recs.Transactions, tx("t2", "002", "2024-02-01", "", split("s3", "cash", "50")))
	b := buildBook(t, recs, book.Options{})

	report, err := check.Default().RunAll(context.Background(), b, check.MissingSplits)
	assert.NoError(t, err)
	assert.Equal(t, []string{"tr002"}, handles(report.ByCheck()[check.MissingSplits]))

	cash, _ := b.AcByPath(":Assets:Cash")
	assert.Equal(t, "100", cash.GetBalanceOn(book.MustParseDay("2024-01-10")).String())
	assert.Equal(t, "150", cash.GetBalanceOn(book.Latest).String())
}

func TestDefaultChecks(t *testing.T) {
	tests := []struct {
		name     string
		check    string
		opts     book.Options
		extra    []records.Transaction
		mutate   func(*records.Records)
		expected []string
	}{
		{
			name:  "WrongSideExpenseRefund",
			check: check.WrongSide,
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "refund", split("s3", "cash", "5"), split("s4", "expenses", "-5")),
			},
			expected: []string{"ids4"},
		},
		{
			name:  "WrongSideIncomeIsFine",
			check: check.WrongSide,
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "fee", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
		},
		{
			name:  "MutatesParent",
			check: check.MutatesParent,
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "", split("s3", "assets", "5"), split("s4", "income", "-5")),
			},
			expected: []string{"ids3"},
		},
		{
			name:  "ZeroValue",
			check: check.ZeroValue,
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "", split("s3", "cash", "0"), split("s4", "income", "0")),
			},
			expected: []string{"ids3", "ids4"},
		},
		{
			name:  "ZeroValueIgnoresCensus",
			check: check.ZeroValue,
			opts:  book.Options{Census: `^census`},
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "census", split("s3", "cash", "0")),
			},
		},
		{
			name:  "OutsidePeriod",
			check: check.OutsidePeriod,
			opts:  book.Options{PeriodFrom: "2024-01-01", PeriodTo: "2024-01-31"},
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
			expected: []string{"tr002"},
		},
		{
			name:  "OutsidePeriodWithoutPeriod",
			check: check.OutsidePeriod,
			extra: []records.Transaction{
				tx("t2", "002", "1999-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
		},
		{
			name:  "FutureDated",
			check: check.FutureDated,
			opts:  book.Options{Today: "2024-01-31"},
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
			expected: []string{"tr002"},
		},
		{
			name:  "NoNumber",
			check: check.NoNumber,
			extra: []records.Transaction{
				tx("t2", "", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
			expected: []string{"idt2"},
		},
		{
			name:  "DuplicateNumberIgnoresUnnumbered",
			check: check.DuplicateNumber,
			extra: []records.Transaction{
				tx("t2", "001", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
				tx("t3", "", "2024-02-02", "", split("s5", "cash", "5"), split("s6", "income", "-5")),
				tx("t4", "", "2024-02-03", "", split("s7", "cash", "5"), split("s8", "income", "-5")),
			},
			expected: []string{"idt1", "idt2"},
		},
		{
			name:  "MalformedNumber",
			check: check.MalformedNumber,
			opts:  book.Options{NumberPattern: `^\d{3}$`},
			extra: []records.Transaction{
				tx("t2", "12a", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
				tx("t3", "", "2024-02-02", "", split("s5", "cash", "5"), split("s6", "income", "-5")),
			},
			expected: []string{"tr12a"},
		},
		{
			name:  "MalformedNumberWithoutPattern",
			check: check.MalformedNumber,
			extra: []records.Transaction{
				tx("t2", "12a", "2024-02-01", "", split("s3", "cash", "5"), split("s4", "income", "-5")),
			},
		},
		{
			name:  "ImplausibleBalance",
			check: check.ImplausibleBalance,
			extra: []records.Transaction{
				tx("t2", "002", "2024-02-01", "", split("s3", "cash", "-150"), split("s4", "expenses", "150")),
			},
			expected: []string{"day2024-02-01:Assets:Cash"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := clubRecords()
			recs.Transactions = append(recs.Transactions, tt.extra...)
			b := buildBook(t, recs, tt.opts)

			report, err := check.Default().RunAll(context.Background(), b, tt.check)
			assert.NoError(t, err)
			assert.Equal(t, 0, len(report.Errors))

			got := handles(report.ByCheck()[tt.check])
			if len(tt.expected) == 0 {
				assert.Equal(t, 0, len(got), "unexpected findings %v", got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestCensusMismatch(t *testing.T) {
	tests := []struct {
		name        string
		description string
		flagged     bool
	}{
		{name: "TargetIsStartingBalance", description: "census 100"},
		{name: "TargetReachedMidDay", description: "census 130"},
		{name: "TargetIsEndingBalance", description: "census 110"},
		{name: "TargetNeverReached", description: "census 120", flagged: true},
		{name: "NoTarget", description: "census"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := clubRecords()
			recs.Transactions = append(recs.Transactions,
				records.Transaction{
					ID: "t2", Num: "002", DatePosted: date("2024-02-01"), DateEntered: date("2024-02-01").Add(time.Hour),
					Splits: []records.Split{split("s3", "cash", "30"), split("s4", "income", "-30")},
				},
				records.Transaction{
					ID: "t3", Num: "003", DatePosted: date("2024-02-01"), DateEntered: date("2024-02-01").Add(2 * time.Hour),
					Splits: []records.Split{split("s5", "cash", "-20"), split("s6", "expenses", "20")},
				},
				records.Transaction{
					ID: "t4", Num: "004", Description: tt.description,
					DatePosted: date("2024-02-01"), DateEntered: date("2024-02-01").Add(3 * time.Hour),
					Splits: []records.Split{split("s7", "cash", "0")},
				},
			)
			b := buildBook(t, recs, book.Options{Census: `^census ?(-?[0-9.]+)?`})

			report, err := check.Default().RunAll(context.Background(), b, check.CensusMismatch, check.MissingSplits)
			assert.NoError(t, err)
			assert.Equal(t, 0, len(report.ByCheck()[check.MissingSplits]))

			if tt.flagged {
				assert.Equal(t, []string{"tr004"}, handles(report.ByCheck()[check.CensusMismatch]))
			} else {
				assert.Equal(t, 0, len(report.ByCheck()[check.CensusMismatch]))
			}
		})
	}
}

func TestPlanOrder(t *testing.T) {
	never := func(*book.Book, *book.Transaction) (bool, error) { return false, nil }

	r := check.NewRegistry()
	r.MustRegister(
		check.NewTransactionCheck("c", "", check.SeverityWarning, never, check.After("b")),
		check.NewTransactionCheck("a", "", check.SeverityWarning, never),
		check.NewTransactionCheck("b", "", check.SeverityWarning, never, check.Requires("a")),
		check.NewTransactionCheck("d", "", check.SeverityWarning, never),
	)

	plan, err := r.Plan()
	assert.NoError(t, err)
	var names []string
	for _, c := range plan {
		names = append(names, c.Name())
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, names)

	plan, err = r.Plan("c", "d")
	assert.NoError(t, err)
	assert.Equal(t, 2, len(plan))
	assert.Equal(t, "c", plan[0].Name())

	_, err = r.Plan("nope")
	var unknownErr *check.UnknownCheckError
	assert.True(t, errors.As(err, &unknownErr))
}

func TestPlanErrors(t *testing.T) {
	never := func(*book.Book, *book.Split) (bool, error) { return false, nil }

	t.Run("Cycle", func(t *testing.T) {
		r := check.NewRegistry()
		r.MustRegister(
			check.NewSplitCheck("x", "", check.SeverityError, never, check.After("y")),
			check.NewSplitCheck("y", "", check.SeverityError, never, check.After("x")),
			check.NewSplitCheck("z", "", check.SeverityError, never),
		)
		_, err := r.Plan()
		var depErr *check.DependencyError
		assert.True(t, errors.As(err, &depErr))
		assert.Equal(t, []string{"x", "y"}, depErr.Cycle)
	})

	t.Run("MissingDependency", func(t *testing.T) {
		r := check.NewRegistry()
		r.MustRegister(check.NewSplitCheck("x", "", check.SeverityError, never, check.Requires("ghost")))
		_, err := r.Plan()
		var depErr *check.DependencyError
		assert.True(t, errors.As(err, &depErr))
		assert.Equal(t, "ghost", depErr.Missing)
	})

	t.Run("DuplicateName", func(t *testing.T) {
		r := check.NewRegistry()
		r.MustRegister(check.NewSplitCheck("x", "", check.SeverityError, never))
		assert.Error(t, r.Register(check.NewSplitCheck("x", "", check.SeverityError, never)))
	})
}

func TestTypedLists(t *testing.T) {
	r := check.Default()
	assert.Equal(t, 3, len(r.SplitChecks()))
	assert.Equal(t, 7, len(r.TransactionChecks()))
	assert.Equal(t, 1, len(r.DayChecks()))
	assert.Equal(t, 11, len(r.Checks()))

	c, ok := r.Lookup(check.ImplausibleBalance)
	assert.True(t, ok)
	assert.Equal(t, check.ScopeAccountDay, c.Scope())
}

func TestParentMutationDoesNotHideBalances(t *testing.T) {
	recs := clubRecords()
	recs.Transactions = append(recs.Transactions,
		tx("t2", "002", "2024-02-01", "", split("s3", "assets", "-500"), split("s4", "income", "500")),
	)
	b := buildBook(t, recs, book.Options{})

	report, err := check.Default().RunAll(context.Background(), b)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(report.Skipped))
	assert.Equal(t, []string{"ids3"}, handles(report.ByCheck()[check.MutatesParent]))
	assert.SliceContains(t, handles(report.ByCheck()[check.ImplausibleBalance]), "day2024-02-01:Assets")
	assert.True(t, report.Failed())
}

func TestRequiresSkipsOnFindings(t *testing.T) {
	recs := clubRecords()
	recs.Transactions = append(recs.Transactions,
		tx("t2", "002", "2024-02-01", "", split("s3", "assets", "-500"), split("s4", "income", "500")),
	)
	b := buildBook(t, recs, book.Options{})

	onParent := func(_ *book.Book, s *book.Split) (bool, error) {
		return s.Account().HasChildren(), nil
	}
	negative := func(_ *book.Book, day *book.AccountDay) (bool, error) {
		return day.EndingBalance.IsNegative(), nil
	}

	r := check.NewRegistry()
	r.MustRegister(
		check.NewSplitCheck("on-parent", "", check.SeverityError, onParent),
		check.NewDayCheck("negative", "", check.SeverityWarning, negative, check.Requires("on-parent")),
	)

	report, err := r.RunAll(context.Background(), b)
	assert.NoError(t, err)
	assert.Equal(t, []check.Skipped{{Check: "negative", Dependency: "on-parent"}}, report.Skipped)
	assert.Equal(t, 0, len(report.ByCheck()["negative"]))

	report, err = r.RunAll(context.Background(), buildBook(t, clubRecords(), book.Options{}))
	assert.NoError(t, err)
	assert.Equal(t, 0, len(report.Skipped))
	assert.SliceContains(t, handles(report.ByCheck()["negative"]), "day:Equity:Opening")
}

func TestFailingChecksAreIsolated(t *testing.T) {
	b := buildBook(t, clubRecords(), book.Options{})
	boom := errors.New("boom")

	r := check.NewRegistry()
	r.MustRegister(
		check.NewTransactionCheck("errors", "", check.SeverityError,
			func(*book.Book, *book.Transaction) (bool, error) { return false, boom }),
		check.NewSplitCheck("panics", "", check.SeverityError,
			func(*book.Book, *book.Split) (bool, error) { panic("nil account") }),
		check.NewTransactionCheck("after-error", "", check.SeverityWarning,
			func(*book.Book, *book.Transaction) (bool, error) { return true, nil }, check.Requires("errors")),
		check.NewTransactionCheck("independent", "", check.SeverityWarning,
			func(*book.Book, *book.Transaction) (bool, error) { return true, nil }),
	)

	report, err := r.RunAll(context.Background(), b)
	assert.NoError(t, err)

	assert.Equal(t, 2, len(report.Errors))
	assert.Equal(t, "errors", report.Errors[0].Check)
	assert.IsError(t, report.Errors[0], boom)
	assert.Equal(t, "panics", report.Errors[1].Check)
	assert.Contains(t, report.Errors[1].Error(), "nil account")

	assert.Equal(t, []check.Skipped{{Check: "after-error", Dependency: "errors"}}, report.Skipped)
	assert.Equal(t, []string{"tr001"}, handles(report.ByCheck()["independent"]))
	assert.True(t, report.Failed())
}

func TestMarkAllIdempotent(t *testing.T) {
	recs := clubRecords()
	recs.Transactions = append(recs.Transactions,
		tx("t2", "", "2024-02-01", "", split("s3", "cash", "50")),
	)
	b := buildBook(t, recs, book.Options{})
	r := check.Default()

	first, err := r.MarkAll(context.Background(), b)
	assert.NoError(t, err)
	tr, _ := b.Transaction("t2")
	marks := tr.Checks()
	assert.Equal(t, []string{check.MissingSplits, check.NoNumber}, marks)

	second, err := r.MarkAll(context.Background(), b)
	assert.NoError(t, err)
	assert.Equal(t, marks, tr.Checks())

	assert.Equal(t, len(first.Entries()), len(second.Entries()))
	for i, e := range first.Entries() {
		assert.Equal(t, e.Check.Name(), second.Entries()[i].Check.Name())
		assert.Equal(t, handles(e.Objects), handles(second.Entries()[i].Objects))
	}

	entry, ok := first.Get(check.WrongSide)
	assert.True(t, ok)
	assert.Equal(t, 0, len(entry.Objects))
	assert.Equal(t, 11, len(first.Entries()))
}

func TestMarkAllSelected(t *testing.T) {
	recs := clubRecords()
	recs.Transactions = append(recs.Transactions,
		tx("t2", "", "2024-02-01", "", split("s3", "cash", "50")),
	)
	b := buildBook(t, recs, book.Options{})

	idx, err := check.Default().MarkAll(context.Background(), b, check.NoNumber)
	assert.NoError(t, err)
	assert.Equal(t, []string{check.NoNumber}, idx.Report.Order)
	assert.Equal(t, 1, len(idx.Entries()))

	tr, _ := b.Transaction("t2")
	assert.Equal(t, []string{check.NoNumber}, tr.Checks())

	_, ok := idx.Get(check.MissingSplits)
	assert.False(t, ok)
}

func TestRunAllCancelled(t *testing.T) {
	b := buildBook(t, clubRecords(), book.Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := check.Default().RunAll(ctx, b)
	assert.IsError(t, err, context.Canceled)
}
