package web

import (
	"net/http"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/report"
)

// memberPaths returns the creditor and debitor parents from the query,
// falling back to the descriptor.
func (s *Server) memberPaths(r *http.Request) (string, string, error) {
	creditors := r.URL.Query().Get("creditors")
	debitors := r.URL.Query().Get("debitors")
	if desc := s.current().Descriptor; desc != nil {
		if creditors == "" {
			creditors = desc.Accounts.Creditors
		}
		if debitors == "" {
			debitors = desc.Accounts.Debitors
		}
	}
	if creditors == "" || debitors == "" {
		return "", "", badRequest("creditors and debitors accounts are not configured")
	}
	return creditors, debitors, nil
}

// DebitorsResponse is the JSON response for the debitors endpoint.
type DebitorsResponse struct {
	Debitors []report.Debitor `json:"debitors"`
}

// handleGetDebitors handles GET requests to /api/debitors.
func (s *Server) handleGetDebitors(w http.ResponseWriter, r *http.Request) {
	creditors, debitors, err := s.memberPaths(r)
	if err != nil {
		writeError(w, err)
		return
	}
	list, err := report.Debitors(s.current().Book, creditors, debitors)
	if err != nil {
		writeError(w, err)
		return
	}
	if list == nil {
		list = []report.Debitor{}
	}
	writeJSONResponse(w, &DebitorsResponse{Debitors: list})
}

// handleGetStatement handles GET requests to /api/statement?name=MEMBER.
func (s *Server) handleGetStatement(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, badRequest("name is required"))
		return
	}
	creditors, debitors, err := s.memberPaths(r)
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := report.UserBalance(s.current().Book, creditors+":"+name, debitors+":"+name)
	if err != nil {
		writeError(w, err)
		return
	}
	if len(st.Accounts) == 0 {
		writeError(w, book.NewNotFoundError("member", name))
		return
	}
	writeJSONResponse(w, st)
}
