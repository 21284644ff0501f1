package journal

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrTimeout is returned when the run deadline expires while journalctl is
// still running.
var ErrTimeout = errors.New("journalctl timed out")

// ExecError describes a journalctl invocation that could not be launched or
// exited with an unexpected status.
type ExecError struct {
	Path   string // executable
	Code   int    // exit code, -1 if the process never ran or was killed by a signal
	Stdout []byte
	Stderr string // trimmed
	Err    error  // launch error, or the *exec.ExitError of a process that ran
}

func (e *ExecError) Error() string {
	var msg string
	switch {
	case e.Signaled():
		msg = fmt.Sprintf("%s was terminated (%v)", e.Path, e.Err)
	case e.Code < 0:
		return fmt.Sprintf("failed to execute '%s': %v", e.Path, e.Err)
	default:
		msg = fmt.Sprintf("%s failed with exit code %d", e.Path, e.Code)
	}
	if e.Stderr != "" {
		msg += ": " + firstLine(e.Stderr)
	}
	return msg
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// Signaled reports whether journalctl started but was killed by a signal.
func (e *ExecError) Signaled() bool {
	var exitErr *exec.ExitError
	return errors.As(e.Err, &exitErr) && !exitErr.Exited()
}

// StateFileError describes a state file that could not be created, reset
// or written.
type StateFileError struct {
	Path string
	Op   string // "create", "reset" or "write"
	Err  error
}

func (e *StateFileError) Error() string {
	return fmt.Sprintf("cannot %s state file %s: %v", e.Op, e.Path, e.Err)
}

func (e *StateFileError) Unwrap() error {
	return e.Err
}
