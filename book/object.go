package book

import "sync"

// Object is anything a check can flag: accounts, account days, transactions
// and splits.
type Object interface {
	Handle() string
	Mark(check string)
	Checks() []string
}

var (
	_ Object = (*Account)(nil)
	_ Object = (*AccountDay)(nil)
	_ Object = (*Transaction)(nil)
	_ Object = (*Split)(nil)
)

// marks records the names of the checks that flagged an object.
type marks struct {
	mu    sync.Mutex
	names []string
}

// Mark records that the named check flagged the object. Marking twice has
// no effect.
func (m *marks) Mark(check string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.names {
		if n == check {
			return
		}
	}
	m.names = append(m.names, check)
}

// Checks returns the names of the checks that flagged the object, in the
// order they were marked.
func (m *marks) Checks() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.names))
	copy(out, m.names)
	return out
}
