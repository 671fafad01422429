package check

import (
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/exp/slices"
)

// Registry holds checks in registration order, split by kind.
type Registry struct {
	order        []Check
	byName       map[string]int
	splits       []*SplitCheck
	transactions []*TransactionCheck
	days         []*DayCheck
	logger       *zap.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger logs skipped and failing checks.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		byName: make(map[string]int),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a check. Names must be unique. Dependencies are resolved
// when checks run, so they may be registered in any order.
func (r *Registry) Register(c Check) error {
	if _, dup := r.byName[c.Name()]; dup {
		return fmt.Errorf("check %q already registered", c.Name())
	}
	switch c := c.(type) {
	case *SplitCheck:
		r.splits = append(r.splits, c)
	case *TransactionCheck:
		r.transactions = append(r.transactions, c)
	case *DayCheck:
		r.days = append(r.days, c)
	}
	r.byName[c.Name()] = len(r.order)
	r.order = append(r.order, c)
	return nil
}

// MustRegister is like Register but panics on duplicates.
func (r *Registry) MustRegister(checks ...Check) {
	for _, c := range checks {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
}

// Lookup returns the check registered under name.
func (r *Registry) Lookup(name string) (Check, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.order[i], true
}

// Checks returns all checks in registration order.
func (r *Registry) Checks() []Check {
	return slices.Clone(r.order)
}

func (r *Registry) SplitChecks() []*SplitCheck             { return slices.Clone(r.splits) }
func (r *Registry) TransactionChecks() []*TransactionCheck { return slices.Clone(r.transactions) }
func (r *Registry) DayChecks() []*DayCheck                 { return slices.Clone(r.days) }

// Plan returns the named checks (all when none are named) in execution
// order: every check after its dependencies, ties broken by registration
// order. Dependencies outside the selection are ignored.
func (r *Registry) Plan(names ...string) ([]Check, error) {
	selected := make(map[string]bool)
	if len(names) == 0 {
		for _, c := range r.order {
			selected[c.Name()] = true
		}
	}
	for _, name := range names {
		if _, ok := r.byName[name]; !ok {
			return nil, &UnknownCheckError{Name: name}
		}
		selected[name] = true
	}

	indegree := make(map[string]int)
	dependents := make(map[string][]string)
	for _, c := range r.order {
		if !selected[c.Name()] {
			continue
		}
		indegree[c.Name()] = 0
		for _, dep := range c.Deps() {
			if _, ok := r.byName[dep.Name]; !ok {
				return nil, &DependencyError{Check: c.Name(), Missing: dep.Name}
			}
			if !selected[dep.Name] {
				continue
			}
			indegree[c.Name()]++
			dependents[dep.Name] = append(dependents[dep.Name], c.Name())
		}
	}

	plan := make([]Check, 0, len(indegree))
	done := make(map[string]bool)
	for len(plan) < len(indegree) {
		var next Check
		for _, c := range r.order {
			if selected[c.Name()] && !done[c.Name()] && indegree[c.Name()] == 0 {
				next = c
				break
			}
		}
		if next == nil {
			var cycle []string
			for _, c := range r.order {
				if selected[c.Name()] && !done[c.Name()] {
					cycle = append(cycle, c.Name())
				}
			}
			return nil, &DependencyError{Cycle: cycle}
		}
		done[next.Name()] = true
		plan = append(plan, next)
		for _, d := range dependents[next.Name()] {
			indegree[d]--
		}
	}
	return plan, nil
}
