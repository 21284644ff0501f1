package domain

// ResultOutput is the NDJSON record describing a finished check run
type ResultOutput struct {
	Type          string   `json:"type"`          // Always "result"
	SchemaVersion int      `json:"schemaVersion"` // Schema version for compatibility
	Status        string   `json:"status"`        // OK, WARNING, CRITICAL
	ExitCode      int      `json:"exit_code"`
	Summary       string   `json:"summary"`
	Critical      int      `json:"critical"`
	Warning       int      `json:"warning"`
	Message       []string `json:"message,omitempty"` // rendered listing, one element per line
	Retried       bool     `json:"retried,omitempty"` // cursor file was reset and journalctl re-run
	DurationMs    int64    `json:"duration_ms"`
}

// NewResultOutput creates a result record from an outcome
// Note: SchemaVersion should be set by the caller (output package)
func NewResultOutput(o Outcome) *ResultOutput {
	return &ResultOutput{
		Type:     "result",
		Status:   string(o.Status.Kind),
		ExitCode: o.Status.Kind.ExitCode(),
		Summary:  o.Status.String(),
		Critical: o.Status.Critical,
		Warning:  o.Status.Warning,
	}
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`           // Always "error"
	SchemaVersion int    `json:"schemaVersion"`  // Schema version for compatibility
	Code          string `json:"code"`           // Machine-readable error code
	Message       string `json:"message"`        // Human-readable message
	Hint          string `json:"hint,omitempty"` // Suggested next step
	Stderr        string `json:"stderr,omitempty"`
	ExitCode      int    `json:"exit_code"` // Always 3 (UNKNOWN)
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:     "error",
		Code:     code,
		Message:  message,
		ExitCode: StatusUnknown.ExitCode(),
	}
}
