package report

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/robinvdvleuten/gnucash/book"
)

// Mutation is a split as shown on a member's statement.
type Mutation struct {
	Num                    string          `json:"tr"`
	TransactionDescription string          `json:"tr-description"`
	Date                   book.DayKey     `json:"date"`
	Description            string          `json:"description"`
	Value                  decimal.Decimal `json:"value"`
}

// Statement is a member's position across their creditor and debitor
// accounts.
type Statement struct {
	Total     decimal.Decimal   `json:"total"`
	Mutations []Mutation        `json:"mutations"`
	Accounts  map[string]string `json:"accounts"`
}

// UserBalance builds the statement for the accounts at creditorPath and
// debitorPath. Either account may be missing.
func UserBalance(b *book.Book, creditorPath, debitorPath string) (*Statement, error) {
	st := &Statement{Mutations: []Mutation{}, Accounts: map[string]string{}}

	roles := []struct{ role, path string }{{"creditor", creditorPath}, {"debitor", debitorPath}}
	for _, r := range roles {
		role, path := r.role, r.path
		acc, err := lookupOptional(b, path)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			continue
		}
		st.Accounts[role] = path
		for _, s := range acc.Mutations() {
			st.Mutations = append(st.Mutations, mutation(s))
			st.Total = st.Total.Add(s.Value)
		}
	}

	slices.SortStableFunc(st.Mutations, func(x, y Mutation) int {
		if c := x.Date.Compare(y.Date); c != 0 {
			return c
		}
		return strings.Compare(x.Num, y.Num)
	})
	return st, nil
}

func lookupOptional(b *book.Book, path string) (*book.Account, error) {
	if path == "" {
		return nil, nil
	}
	acc, err := b.AcByPath(path)
	var nfErr *book.NotFoundError
	if errors.As(err, &nfErr) {
		return nil, nil
	}
	return acc, err
}

func mutation(s *book.Split) Mutation {
	tr := s.Transaction()
	return Mutation{
		Num:                    tr.Num,
		TransactionDescription: tr.Description,
		Date:                   tr.PostedDay(),
		Description:            s.Memo,
		Value:                  s.Value,
	}
}

// Debitor is a member owing money.
type Debitor struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// Debitors lists the members whose combined creditor and debitor accounts
// have a positive value, largest first. Members are the children of the
// two accounts, matched by name.
func Debitors(b *book.Book, creditorsPath, debitorsPath string) ([]Debitor, error) {
	totals := make(map[string]decimal.Decimal)
	for _, path := range []string{creditorsPath, debitorsPath} {
		parent, err := b.AcByPath(path)
		if err != nil {
			return nil, err
		}
		for _, member := range parent.Children() {
			total := totals[member.Name]
			for _, s := range member.Mutations() {
				total = total.Add(s.Value)
			}
			totals[member.Name] = total
		}
	}

	names := maps.Keys(totals)
	slices.Sort(names)

	out := []Debitor{}
	for _, name := range names {
		if totals[name].Sign() > 0 {
			out = append(out, Debitor{Name: name, Value: totals[name]})
		}
	}
	slices.SortStableFunc(out, func(x, y Debitor) int {
		return y.Value.Cmp(x.Value)
	})
	return out, nil
}
