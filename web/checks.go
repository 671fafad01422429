package web

import (
	"net/http"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/report"
)

// handleGetChecks handles GET requests to /api/checks.
// Returns the findings of every check that ran when the book was loaded.
func (s *Server) handleGetChecks(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, report.Checks(s.current().Index))
}

// ObjectResponse is the JSON response for the resolve endpoint.
type ObjectResponse struct {
	Handle string   `json:"handle"`
	Kind   string   `json:"kind"`
	Checks []string `json:"checks"`
}

// handleGetResolve handles GET requests to /api/resolve?handle=HANDLE.
func (s *Server) handleGetResolve(w http.ResponseWriter, r *http.Request) {
	b := s.current().Book

	handle := r.URL.Query().Get("handle")
	if handle == "" {
		writeError(w, badRequest("handle is required"))
		return
	}
	obj, err := b.Resolve(handle)
	if err != nil {
		writeError(w, err)
		return
	}

	checks := obj.Checks()
	if checks == nil {
		checks = []string{}
	}
	writeJSONResponse(w, &ObjectResponse{Handle: obj.Handle(), Kind: kindOf(obj), Checks: checks})
}

func kindOf(obj book.Object) string {
	switch obj.(type) {
	case *book.Account:
		return "account"
	case *book.AccountDay:
		return "day"
	case *book.Transaction:
		return "transaction"
	case *book.Split:
		return "split"
	}
	return "unknown"
}
