package check

import (
	"fmt"
	"strings"
)

// CheckError records a check whose predicate failed or panicked. The check's
// findings are discarded, other checks are unaffected.
type CheckError struct {
	Check string
	Err   error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("check %s failed: %v", e.Check, e.Err)
}

func (e *CheckError) Unwrap() error {
	return e.Err
}

func (e *CheckError) GetCheck() string {
	return e.Check
}

// UnknownCheckError is returned when a check name is not registered.
type UnknownCheckError struct {
	Name string
}

func (e *UnknownCheckError) Error() string {
	return fmt.Sprintf("unknown check %q", e.Name)
}

func (e *UnknownCheckError) GetCheck() string {
	return e.Name
}

// DependencyError is returned when dependencies cannot be ordered: a
// dependency is not registered or the dependencies form a cycle.
type DependencyError struct {
	Check   string
	Missing string
	Cycle   []string
}

func (e *DependencyError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("dependency cycle between checks %s", strings.Join(e.Cycle, ", "))
	}
	return fmt.Sprintf("check %s depends on unknown check %q", e.Check, e.Missing)
}

func (e *DependencyError) GetCheck() string {
	return e.Check
}

// panicError wraps a value recovered from a panicking predicate.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}
