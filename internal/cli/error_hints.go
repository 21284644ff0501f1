package cli

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/vburojevic/check_journal/internal/journal"
	"github.com/vburojevic/check_journal/internal/rules"
)

func hintForRules(err error) string {
	if err == nil {
		return ""
	}

	var ce *rules.CompileError
	if errors.As(err, &ce) {
		return "Patterns use Go regexp (RE2) syntax: no lookaround or backreferences; try `check_journal rules validate RULES`"
	}

	if errors.Is(err, os.ErrNotExist) {
		return "Rules file not found; pass a file name or an http(s) URL"
	}

	msg := err.Error()
	if strings.Contains(msg, "rules document exceeds") {
		return "Remote rules documents are limited to 4 MiB; split or trim the document"
	}
	if strings.Contains(msg, "failed to retrieve remote rules") {
		return "Check the rules URL; the server must answer 2xx"
	}

	return "Run `check_journal rules validate RULES` for details"
}

func hintForJournal(ee *journal.ExecError) string {
	if ee == nil {
		return ""
	}

	if ee.Code < 0 && isCommandNotFound(ee.Err, "journalctl") {
		return "journalctl not found; pass --journalctl with its full path (then `check_journal doctor`)"
	}

	if ee.Signaled() {
		return "journalctl was killed by a signal; check for OOM kills in the kernel log or narrow --span"
	}

	stderr := strings.ToLower(ee.Stderr)
	if strings.Contains(stderr, "no journal files were found") || strings.Contains(stderr, "permission denied") {
		return "Add the monitoring user to the systemd-journal group, or pass --user for the user journal"
	}
	if strings.Contains(ee.Stderr, "Failed to seek to cursor") {
		return "The state file was reset but journalctl still cannot use it; remove it and check its directory"
	}

	return "Run `check_journal doctor` for diagnostics"
}

func hintForTimeout() string {
	return "Increase --timeout, or narrow the read with --span and --unit"
}

func hintForStateFile() string {
	return "Check that the state file directory exists and is writable; try `check_journal doctor`"
}

func isCommandNotFound(err error, name string) bool {
	if err == nil {
		return false
	}

	var ee *exec.Error
	if errors.As(err, &ee) && errors.Is(ee.Err, exec.ErrNotFound) {
		return true
	}

	var pe *os.PathError
	if errors.As(err, &pe) && errors.Is(pe.Err, os.ErrNotExist) {
		if strings.EqualFold(pe.Path, name) || strings.HasSuffix(pe.Path, string(os.PathSeparator)+name) {
			return true
		}
	}

	// Fallback to string matching for wrapped errors.
	msg := err.Error()
	if strings.Contains(msg, "executable file not found") {
		return true
	}
	return strings.Contains(msg, "no such file or directory") && strings.Contains(msg, name)
}
