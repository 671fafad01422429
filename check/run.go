package check

import (
	"context"

	"go.uber.org/zap"

	"github.com/robinvdvleuten/gnucash/book"
	"github.com/robinvdvleuten/gnucash/telemetry"
)

// Result is one object flagged by one check.
type Result struct {
	Check  Check
	Object book.Object
}

// Skipped records a check that did not run because a required check did
// not pass.
type Skipped struct {
	Check      string
	Dependency string
}

// Report is the outcome of running checks over a book.
type Report struct {
	// Order lists the checks that were planned, in execution order.
	Order   []string
	Results []Result
	Errors  []*CheckError
	Skipped []Skipped
}

// ByCheck groups the flagged objects by check name.
func (r *Report) ByCheck() map[string][]book.Object {
	out := make(map[string][]book.Object)
	for _, res := range r.Results {
		out[res.Check.Name()] = append(out[res.Check.Name()], res.Object)
	}
	return out
}

// Count returns the number of results with the given severity.
func (r *Report) Count(severity Severity) int {
	n := 0
	for _, res := range r.Results {
		if res.Check.Severity() == severity {
			n++
		}
	}
	return n
}

// Failed reports whether any error-severity check flagged something or any
// check could not be evaluated.
func (r *Report) Failed() bool {
	return r.Count(SeverityError) > 0 || len(r.Errors) > 0
}

type outcome int

const (
	passed outcome = iota
	flagged
	failed
	skipped
)

// RunAll evaluates the named checks, or all of them when no names are given.
// A check whose predicate errors or panics is recorded in Report.Errors and
// contributes no results.
func (r *Registry) RunAll(ctx context.Context, b *book.Book, names ...string) (*Report, error) {
	timer := telemetry.StartTimer(ctx, "check.run")
	defer timer.End()

	plan, err := r.Plan(names...)
	if err != nil {
		return nil, err
	}

	timer.Count(len(plan), "checks")

	report := &Report{}
	outcomes := make(map[string]outcome, len(plan))
	inPlan := make(map[string]bool, len(plan))
	for _, c := range plan {
		inPlan[c.Name()] = true
		report.Order = append(report.Order, c.Name())
	}

	for _, c := range plan {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if dep, blocked := r.blockedBy(c, inPlan, outcomes); blocked {
			outcomes[c.Name()] = skipped
			report.Skipped = append(report.Skipped, Skipped{Check: c.Name(), Dependency: dep})
			r.logger.Debug("check skipped", zap.String("check", c.Name()), zap.String("requires", dep))
			continue
		}

		checkTimer := timer.Child(c.Name())
		matched, err := evaluate(c, b)
		checkTimer.Count(len(matched), "flagged")
		checkTimer.End()

		if err != nil {
			outcomes[c.Name()] = failed
			report.Errors = append(report.Errors, &CheckError{Check: c.Name(), Err: err})
			r.logger.Warn("check failed", zap.String("check", c.Name()), zap.Error(err))
			continue
		}

		outcomes[c.Name()] = passed
		if len(matched) > 0 {
			outcomes[c.Name()] = flagged
		}
		for _, obj := range matched {
			report.Results = append(report.Results, Result{Check: c, Object: obj})
		}
	}

	return report, nil
}

func (r *Registry) blockedBy(c Check, inPlan map[string]bool, outcomes map[string]outcome) (string, bool) {
	for _, dep := range c.Deps() {
		if dep.Strong && inPlan[dep.Name] && outcomes[dep.Name] != passed {
			return dep.Name, true
		}
	}
	return "", false
}

// evaluate runs a single check, turning a panic into an error.
func evaluate(c Check, b *book.Book) (matched []book.Object, err error) {
	defer func() {
		if v := recover(); v != nil {
			matched, err = nil, &panicError{value: v}
		}
	}()
	return c.run(b)
}

// Entry is a check together with every object it flagged.
type Entry struct {
	Check   Check
	Objects []book.Object
}

// Index gives access to check outcomes by check name.
type Index struct {
	Report  *Report
	entries map[string]*Entry
	order   []string
}

// Get returns the entry for a check name.
func (i *Index) Get(name string) (*Entry, bool) {
	e, ok := i.entries[name]
	return e, ok
}

// Entries returns an entry for every check that ran or was skipped, in
// registration order, including checks that flagged nothing.
func (i *Index) Entries() []*Entry {
	out := make([]*Entry, len(i.order))
	for n, name := range i.order {
		out[n] = i.entries[name]
	}
	return out
}

// Index groups the results of report by check.
func (r *Registry) Index(report *Report) *Index {
	planned := make(map[string]bool, len(report.Order))
	for _, name := range report.Order {
		planned[name] = true
	}

	idx := &Index{Report: report, entries: make(map[string]*Entry, len(report.Order))}
	for _, c := range r.order {
		if !planned[c.Name()] {
			continue
		}
		idx.entries[c.Name()] = &Entry{Check: c}
		idx.order = append(idx.order, c.Name())
	}
	for _, res := range report.Results {
		e := idx.entries[res.Check.Name()]
		e.Objects = append(e.Objects, res.Object)
	}
	return idx
}

// MarkAll runs the named checks, or every check when names is empty, marks
// each flagged object with the check's name and returns the outcomes
// indexed by name. Running it again on the same book produces the same
// marks.
func (r *Registry) MarkAll(ctx context.Context, b *book.Book, names ...string) (*Index, error) {
	report, err := r.RunAll(ctx, b, names...)
	if err != nil {
		return nil, err
	}

	for _, res := range report.Results {
		res.Object.Mark(res.Check.Name())
	}
	return r.Index(report), nil
}
