package web

import (
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/report"
)

// BalanceNode is an account in the balance tree.
type BalanceNode struct {
	Account  string          `json:"account"`
	Name     string          `json:"name"`
	Depth    int             `json:"depth"`
	Balance  decimal.Decimal `json:"balance"`
	Children []*BalanceNode  `json:"children,omitempty"`
}

// BalancesResponse is the JSON response for the balances endpoint.
type BalancesResponse struct {
	Date book.DayKey  `json:"date"`
	Tree *BalanceNode `json:"tree"`
}

// handleGetBalances handles GET requests to /api/balances.
//
// Query parameters:
//   - date: YYYY-MM-DD, "opening" or "latest" (default)
//   - account: only this account and its descendants
//   - depth: maximum depth below the account, 0 is unlimited
func (s *Server) handleGetBalances(w http.ResponseWriter, r *http.Request) {
	b := s.current().Book

	day, err := parseDayParam(r, "date")
	if err != nil {
		writeError(w, err)
		return
	}

	from := b.Root()
	if path := r.URL.Query().Get("account"); path != "" {
		if from, err = b.AcByPath(path); err != nil {
			writeError(w, err)
			return
		}
	}

	depth := 0
	if v := r.URL.Query().Get("depth"); v != "" {
		if depth, err = strconv.Atoi(v); err != nil || depth < 0 {
			writeError(w, badRequest("depth must be a non-negative number"))
			return
		}
	}

	writeJSONResponse(w, &BalancesResponse{
		Date: day,
		Tree: toBalanceNode(report.Tree(from, day, depth)),
	})
}

func toBalanceNode(n *report.Node) *BalanceNode {
	out := &BalanceNode{
		Account: n.Account.Path(),
		Name:    n.Account.Name,
		Depth:   n.Depth,
		Balance: n.Balance,
	}
	if n.Account.IsRoot() {
		out.Account = ":"
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, toBalanceNode(c))
	}
	return out
}

// DayInfo is one day of an account.
type DayInfo struct {
	Handle          string          `json:"handle"`
	Day             book.DayKey     `json:"day"`
	Net             decimal.Decimal `json:"net"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	EndingBalance   decimal.Decimal `json:"endingBalance"`
	Transactions    []string        `json:"transactions"`
	Checks          []string        `json:"checks,omitempty"`
}

// DaysResponse is the JSON response for the days endpoint.
type DaysResponse struct {
	Account string    `json:"account"`
	Days    []DayInfo `json:"days"`
}

// handleGetDays handles GET requests to /api/days?account=PATH.
func (s *Server) handleGetDays(w http.ResponseWriter, r *http.Request) {
	b := s.current().Book

	path := r.URL.Query().Get("account")
	if path == "" {
		writeError(w, badRequest("account is required"))
		return
	}
	acc, err := b.AcByPath(path)
	if err != nil {
		writeError(w, err)
		return
	}

	days := make([]DayInfo, 0)
	for _, d := range acc.DayList() {
		trs := make([]string, 0, len(d.Transactions()))
		for _, tr := range d.Transactions() {
			trs = append(trs, tr.Handle())
		}
		days = append(days, DayInfo{
			Handle:          d.Handle(),
			Day:             d.Key,
			Net:             d.Net,
			StartingBalance: d.StartingBalance,
			EndingBalance:   d.EndingBalance,
			Transactions:    trs,
			Checks:          d.Checks(),
		})
	}

	writeJSONResponse(w, &DaysResponse{Account: acc.Path(), Days: days})
}
