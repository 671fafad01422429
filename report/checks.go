package report

import (
	"github.com/robinvdvleuten/gnucash/check"
)

// CheckFinding is a check with the handles of the objects it flagged.
type CheckFinding struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Severity    check.Severity `json:"severity"`
	Scope       string         `json:"scope"`
	Handles     []string       `json:"handles"`
}

// CheckSummary lists every check's findings plus the checks that could not
// be evaluated.
type CheckSummary struct {
	Findings []CheckFinding `json:"findings"`
	Errors   []string       `json:"errors"`
	Skipped  []string       `json:"skipped"`
	Failed   bool           `json:"failed"`
}

// Checks summarizes a check index for display or JSON export.
func Checks(idx *check.Index) *CheckSummary {
	sum := &CheckSummary{
		Findings: []CheckFinding{},
		Errors:   []string{},
		Skipped:  []string{},
		Failed:   idx.Report.Failed(),
	}
	for _, e := range idx.Entries() {
		f := CheckFinding{
			Name:        e.Check.Name(),
			Description: e.Check.Description(),
			Severity:    e.Check.Severity(),
			Scope:       e.Check.Scope().String(),
			Handles:     []string{},
		}
		for _, obj := range e.Objects {
			f.Handles = append(f.Handles, obj.Handle())
		}
		sum.Findings = append(sum.Findings, f)
	}
	for _, err := range idx.Report.Errors {
		sum.Errors = append(sum.Errors, err.Error())
	}
	for _, s := range idx.Report.Skipped {
		sum.Skipped = append(sum.Skipped, s.Check)
	}
	return sum
}
