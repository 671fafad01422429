package web

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/errors"
)

// ErrorResponse is the JSON body of a failed request.
type ErrorResponse struct {
	Error errors.ErrorJSON `json:"error"`
}

// writeJSONResponse writes a JSON response to the http.ResponseWriter.
// If encoding fails, it writes an error response.
func writeJSONResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// writeError writes err as JSON with a status matching its type.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusOf(err))
	_ = json.NewEncoder(w).Encode(&ErrorResponse{
		Error: errors.NewJSONFormatter().FormatAllToSlice([]error{err})[0],
	})
}

func statusOf(err error) int {
	var (
		notFound  *book.NotFoundError
		ambiguous *book.AmbiguousError
		parse     *book.ParseError
		bad       *badRequestError
	)
	switch {
	case stderrors.As(err, &notFound):
		return http.StatusNotFound
	case stderrors.As(err, &ambiguous):
		return http.StatusConflict
	case stderrors.As(err, &parse), stderrors.As(err, &bad):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

type badRequestError struct {
	msg string
}

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error {
	return &badRequestError{msg: msg}
}

// parseDayParam reads a day query parameter. Empty and "latest" select the
// latest day, "opening" the opening day.
func parseDayParam(r *http.Request, name string) (book.DayKey, error) {
	switch v := r.URL.Query().Get(name); v {
	case "", "latest":
		return book.Latest, nil
	case "opening":
		return book.Opening, nil
	default:
		return book.ParseDay(v)
	}
}
