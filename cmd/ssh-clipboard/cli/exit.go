package cli

import "fmt"

// ExitError signals a non-zero process exit code without the "error:"
// line main() normally prints: the command has already written its
// own diagnostic to stderr.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the process exit code main() should use.
func (e *ExitError) ExitCode() int {
	return e.Code
}
