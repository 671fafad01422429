package web

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// AccountInfo represents basic information about a GnuCash account.
type AccountInfo struct {
	Handle         string          `json:"handle"`
	Name           string          `json:"name"`
	ShortPath      string          `json:"shortPath"`
	Type           string          `json:"type"`
	Description    string          `json:"description,omitempty"`
	Balance        decimal.Decimal `json:"balance"`
	OpeningBalance bool            `json:"openingBalance,omitempty"`
	Checks         []string        `json:"checks,omitempty"`
}

// AccountsResponse is the JSON response structure for the accounts endpoint.
type AccountsResponse struct {
	Accounts []AccountInfo `json:"accounts"`
}

// handleGetAccounts handles GET requests to /api/accounts.
// Returns all accounts except ROOT, in path order.
func (s *Server) handleGetAccounts(w http.ResponseWriter, r *http.Request) {
	b := s.current().Book

	accounts := make([]AccountInfo, 0, len(b.Accounts()))
	for _, acc := range b.Root().Descendants()[1:] {
		accounts = append(accounts, AccountInfo{
			Handle:         acc.Handle(),
			Name:           acc.Path(),
			ShortPath:      acc.ShortPath(),
			Type:           acc.Type.String(),
			Description:    acc.Description,
			Balance:        acc.Balance(),
			OpeningBalance: acc.IsOpeningBalance,
			Checks:         acc.Checks(),
		})
	}

	writeJSONResponse(w, &AccountsResponse{Accounts: accounts})
}

// StatusResponse describes the loaded book.
type StatusResponse struct {
	Version      string    `json:"version"`
	CommitSHA    string    `json:"commitSHA"`
	File         string    `json:"file"`
	Watching     []string  `json:"watching"`
	LoadedAt     time.Time `json:"loadedAt"`
	Accounts     int       `json:"accounts"`
	Transactions int       `json:"transactions"`
	Splits       int       `json:"splits"`
}

// handleGetStatus handles GET requests to /api/status.
func (s *Server) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	result, loadedAt := s.result, s.loadedAt
	s.mu.RUnlock()

	b := result.Book
	writeJSONResponse(w, &StatusResponse{
		Version:      s.Version,
		CommitSHA:    s.CommitSHA,
		File:         s.inputFile,
		Watching:     result.Files,
		LoadedAt:     loadedAt,
		Accounts:     len(b.Accounts()),
		Transactions: len(b.Transactions()),
		Splits:       len(b.Splits()),
	})
}
