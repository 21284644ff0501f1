package cli

// CLIError is a structured error used for consistent NDJSON/text emission.
type CLIError struct {
	Code    string
	Message string
	Hint    string
}

func (e *CLIError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

// Error codes of NDJSON error records
const (
	codeInvalidFlags    = "INVALID_FLAGS"
	codeRulesInvalid    = "RULES_INVALID"
	codeRulesLoadFailed = "RULES_LOAD_FAILED"
	codeJournalFailed   = "JOURNAL_FAILED"
	codeStateFile       = "STATEFILE_FAILED"
	codeTimeout         = "TIMEOUT"
	codeCheckFailed     = "CHECK_FAILED"
)
