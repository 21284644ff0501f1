package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/sync/errgroup"

	"github.com/vburojevic/check_journal/internal/config"
	"github.com/vburojevic/check_journal/internal/output"
	"github.com/vburojevic/check_journal/internal/rules"
)

// DoctorCmd checks system requirements and configuration
type DoctorCmd struct {
	Journalctl string `short:"j" default:"${config_journalctl}" placeholder:"PATH" help:"Executable to check"`
	StateFile  string `short:"f" name:"statefile" placeholder:"FILE" help:"State file to check (default: from config)"`
	Rules      string `arg:"" optional:"" name:"rules" placeholder:"RULES_YAML" help:"Rules to load (default: from config)"`
}

// checkResult represents a single diagnostic check
type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// doctorReport is the complete diagnostic report
type doctorReport struct {
	Type          string        `json:"type"`
	SchemaVersion int           `json:"schemaVersion"`
	Timestamp     string        `json:"timestamp"`
	Checks        []checkResult `json:"checks"`
	AllPassed     bool          `json:"all_passed"`
	ErrorCount    int           `json:"error_count"`
	WarnCount     int           `json:"warn_count"`
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	cfg := globals.config()
	if c.Journalctl == "" {
		c.Journalctl = cfg.Check.Journalctl
	}
	if c.Rules == "" {
		c.Rules = cfg.Check.Rules
	}
	if c.StateFile == "" {
		c.StateFile = cfg.Check.StateFile
	}

	ctx, cancel := globals.clock().WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	checkers := []func(context.Context) checkResult{
		c.checkJournalctl,
		c.checkJournalAccess,
		c.checkRules,
		c.checkStateFile,
		func(context.Context) checkResult { return checkConfig(globals) },
	}

	// The checkers are independent; each writes only its own slot.
	checks := make([]checkResult, len(checkers))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checkers {
		g.Go(func() error {
			checks[i] = check(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	errorCount := 0
	warnCount := 0
	for _, check := range checks {
		switch check.Status {
		case "error":
			errorCount++
		case "warning":
			warnCount++
		}
	}

	report := doctorReport{
		Type:          "doctor",
		SchemaVersion: output.SchemaVersion,
		Timestamp:     globals.clock().Now().UTC().Format(time.RFC3339),
		Checks:        checks,
		AllPassed:     errorCount == 0,
		ErrorCount:    errorCount,
		WarnCount:     warnCount,
	}

	if globals.Format == "ndjson" {
		return newJSONEncoder(globals.Stdout).Encode(report)
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("Check", "Status", "Message")
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		msg := check.Message
		if check.Details != "" {
			msg += " (" + check.Details + ")"
		}
		rows = append(rows, []string{check.Name, statusIcon(check.Status), msg})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	fmt.Fprintln(globals.Stdout)
	if errorCount == 0 && warnCount == 0 {
		fmt.Fprintln(globals.Stdout, "All checks passed!")
	} else {
		fmt.Fprintf(globals.Stdout, "Errors: %d, Warnings: %d\n", errorCount, warnCount)
	}
	return nil
}

func statusIcon(status string) string {
	switch status {
	case "ok":
		return "✓ ok"
	case "warning":
		return "⚠ warning"
	default:
		return "✗ error"
	}
}

func (c *DoctorCmd) checkJournalctl(ctx context.Context) checkResult {
	result := checkResult{Name: "journalctl"}

	path, err := exec.LookPath(c.Journalctl)
	if err != nil {
		result.Status = "error"
		result.Message = "journalctl not found"
		result.Details = "pass --journalctl with its full path"
		return result
	}

	out, err := exec.CommandContext(ctx, path, "--version").Output()
	if err != nil {
		result.Status = "error"
		result.Message = "journalctl --version failed"
		result.Details = err.Error()
		return result
	}

	result.Status = "ok"
	result.Message = firstOutputLine(out)
	result.Details = path
	return result
}

func (c *DoctorCmd) checkJournalAccess(ctx context.Context) checkResult {
	result := checkResult{Name: "journal access"}

	cmd := exec.CommandContext(ctx, c.Journalctl, "--no-pager", "--lines=1", "--quiet")
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		result.Status = "warning"
		result.Message = "cannot read the journal"
		result.Details = firstOutputLine([]byte(stderr.String()))
		if result.Details == "" {
			result.Details = err.Error()
		}
		return result
	}
	if msg := firstOutputLine([]byte(stderr.String())); msg != "" {
		// journalctl succeeds with a notice when it only sees the user journal
		result.Status = "warning"
		result.Message = msg
		return result
	}

	result.Status = "ok"
	result.Message = "journal is readable"
	return result
}

func (c *DoctorCmd) checkRules(ctx context.Context) checkResult {
	result := checkResult{Name: "rules"}

	if c.Rules == "" {
		result.Status = "warning"
		result.Message = "no rules configured"
		result.Details = "pass RULES_YAML or set check.rules"
		return result
	}

	r, err := rules.Load(ctx, c.Rules)
	if err != nil {
		result.Status = "error"
		result.Message = err.Error()
		return result
	}

	crit, critExc := r.Critical.Len()
	warn, warnExc := r.Warning.Len()
	result.Status = "ok"
	result.Message = fmt.Sprintf("%d/%d critical, %d/%d warning patterns/exceptions", crit, critExc, warn, warnExc)
	result.Details = c.Rules
	if len(r.UnknownKeys) > 0 {
		result.Status = "warning"
		result.Details = "unknown keys ignored: " + strings.Join(r.UnknownKeys, ", ")
	}
	return result
}

func (c *DoctorCmd) checkStateFile(context.Context) checkResult {
	result := checkResult{Name: "state file"}

	if c.StateFile == "" {
		result.Status = "ok"
		result.Message = "not configured, every run reads the full span"
		return result
	}

	dir := filepath.Dir(c.StateFile)
	tmp, err := os.CreateTemp(dir, ".check_journal-doctor-*")
	if err != nil {
		result.Status = "error"
		result.Message = "state file directory is not writable"
		result.Details = err.Error()
		return result
	}
	tmp.Close()
	os.Remove(tmp.Name())

	result.Status = "ok"
	result.Message = "directory is writable"
	result.Details = c.StateFile
	return result
}

func checkConfig(globals *Globals) checkResult {
	result := checkResult{Name: "config"}

	path := config.ConfigFile()
	if globals.Meta != nil && globals.Meta.ConfigFile != "" {
		path = globals.Meta.ConfigFile
	}
	if path == "" {
		result.Status = "ok"
		result.Message = "using defaults (no config file)"
		return result
	}

	if _, err := config.LoadFromFile(path); err != nil {
		result.Status = "error"
		result.Message = "cannot parse config file"
		result.Details = err.Error()
		return result
	}

	result.Status = "ok"
	result.Message = "config file loaded"
	result.Details = path
	return result
}

func firstOutputLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
