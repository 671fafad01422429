package book

import "strings"

// Handle returns the handle of obj, so that b.Resolve(Handle(obj)) finds
// obj again.
func Handle(obj Object) string {
	return obj.Handle()
}

// Resolve finds the object a handle refers to. Handles are
//
//	tr<num>            a transaction by number
//	id<id>             a transaction, split or account by record id
//	day<date><path>    an account day, e.g. day2024-01-05:Assets:Cash
//	:<path>            an account
//
// The opening day has an empty date, as in "day:Equity:Opening".
func (b *Book) Resolve(handle string) (Object, error) {
	switch {
	case strings.HasPrefix(handle, ":"):
		return b.AcByPath(handle)

	case strings.HasPrefix(handle, "tr"):
		return b.TrByNum(strings.TrimPrefix(handle, "tr"))

	case strings.HasPrefix(handle, "id"):
		id := strings.TrimPrefix(handle, "id")
		if tr, ok := b.transactions[id]; ok {
			return tr, nil
		}
		if s, ok := b.splits[id]; ok {
			return s, nil
		}
		if a, ok := b.accounts[id]; ok {
			return a, nil
		}
		return nil, NewNotFoundError("id", id)

	case strings.HasPrefix(handle, "day"):
		rest := strings.TrimPrefix(handle, "day")
		date, path := rest, ""
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			date, path = rest[:i], rest[i:]
		}
		key, err := ParseDay(date)
		if err != nil {
			return nil, err
		}
		acc, err := b.AcByPath(path)
		if err != nil {
			return nil, err
		}
		day, ok := acc.Day(key)
		if !ok {
			return nil, NewNotFoundError("day", handle)
		}
		return day, nil
	}

	return nil, NewParseError(handle, "handle", nil)
}
