package cli

// Exit codes of the gnucash command.
const (
	// ExitChecksFailed means the book loaded but an error-severity check
	// flagged something or could not be evaluated.
	ExitChecksFailed = 1
	// ExitLoadFailed means the book could not be read or linked.
	ExitLoadFailed = 2
)

// CommandError signals a command failure with a specific exit code.
// Commands return this after handling all output (printing errors/warnings to stderr).
// Main centralizes exit handling instead of commands calling os.Exit directly.
type CommandError struct {
	exitCode int
}

func NewCommandError(exitCode int) *CommandError {
	return &CommandError{exitCode: exitCode}
}

func (e *CommandError) Error() string {
	switch e.exitCode {
	case ExitChecksFailed:
		return "checks failed"
	case ExitLoadFailed:
		return "book could not be loaded"
	}
	return "command failed"
}

// ExitCode returns the exit code associated with this error.
func (e *CommandError) ExitCode() int {
	return e.exitCode
}
