package domain

import "fmt"

// StatusKind is the severity of a completed check run
type StatusKind string

const (
	StatusOK       StatusKind = "OK"
	StatusWarning  StatusKind = "WARNING"
	StatusCritical StatusKind = "CRITICAL"
	StatusUnknown  StatusKind = "UNKNOWN"
)

// ExitCode returns the monitoring plugin exit code for the kind
func (k StatusKind) ExitCode() int {
	switch k {
	case StatusOK:
		return 0
	case StatusWarning:
		return 1
	case StatusCritical:
		return 2
	default:
		return 3
	}
}

// Status is the result of classifying one journal read.
//
// Critical and Warning always hold the true number of matched lines, even
// when the rendered message shows fewer.
type Status struct {
	Kind     StatusKind
	Summary  string // only used by StatusOK
	Critical int
	Warning  int
}

// OK returns a successful status with a short summary
func OK(summary string) Status {
	return Status{Kind: StatusOK, Summary: summary}
}

// Warning returns a status for w lines matching warning rules
func Warning(w int) Status {
	return Status{Kind: StatusWarning, Warning: w}
}

// Critical returns a status for c critical and w warning lines
func Critical(c, w int) Status {
	return Status{Kind: StatusCritical, Critical: c, Warning: w}
}

// String renders the plugin summary text
func (s Status) String() string {
	switch s.Kind {
	case StatusWarning:
		return fmt.Sprintf("%d warning line(s) found", s.Warning)
	case StatusCritical:
		return fmt.Sprintf("%d critical, %d warning line(s) found", s.Critical, s.Warning)
	default:
		return s.Summary
	}
}

// Outcome is the end-to-end result of one run: a status plus the rendered
// match listing.
type Outcome struct {
	Status  Status
	Message []byte
}
