package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/vburojevic/check_journal/internal/journal"
	"github.com/vburojevic/check_journal/internal/output"
	"github.com/vburojevic/check_journal/internal/rules"
)

// outputErrorCommon normalizes error emission of the auxiliary commands,
// respecting ndjson vs text formats.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	h := ""
	if len(hint) > 0 {
		h = hint[0]
	}
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, h)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "Error [%s]: %s\n", code, message)
		if h != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", h)
		}
	}
	return &CLIError{Code: code, Message: message, Hint: h}
}

// failureFor maps an error of a check run to the UNKNOWN record shown to
// the monitoring framework. timeout is the configured limit in seconds.
func failureFor(err error, timeout int) output.Failure {
	var (
		cliErr     *CLIError
		compileErr *rules.CompileError
		loadErr    *rules.LoadError
		execErr    *journal.ExecError
		stateErr   *journal.StateFileError
	)

	switch {
	case errors.As(err, &cliErr):
		return output.Failure{Code: cliErr.Code, Message: cliErr.Message, Hint: cliErr.Hint}
	case errors.Is(err, journal.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return output.Failure{
			Code:    codeTimeout,
			Message: fmt.Sprintf("timed out after %ds", timeout),
			Hint:    hintForTimeout(),
		}
	case errors.As(err, &compileErr):
		return output.Failure{Code: codeRulesInvalid, Message: err.Error(), Hint: hintForRules(err)}
	case errors.As(err, &loadErr):
		return output.Failure{Code: codeRulesLoadFailed, Message: err.Error(), Hint: hintForRules(err)}
	case errors.As(err, &execErr):
		return output.Failure{
			Code:    codeJournalFailed,
			Message: err.Error(),
			Hint:    hintForJournal(execErr),
			Stdout:  string(execErr.Stdout),
			Stderr:  execErr.Stderr,
		}
	case errors.As(err, &stateErr):
		return output.Failure{Code: codeStateFile, Message: err.Error(), Hint: hintForStateFile()}
	default:
		return output.Failure{Code: codeCheckFailed, Message: err.Error(), Hint: "Run `check_journal doctor` for diagnostics"}
	}
}
