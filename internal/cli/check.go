package cli

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vburojevic/check_journal/internal/config"
	"github.com/vburojevic/check_journal/internal/domain"
	"github.com/vburojevic/check_journal/internal/journal"
	"github.com/vburojevic/check_journal/internal/output"
	"github.com/vburojevic/check_journal/internal/report"
	"github.com/vburojevic/check_journal/internal/rules"
)

// CheckCmd reads recent journal entries and reports matches as a
// monitoring plugin status.
type CheckCmd struct {
	Journalctl  string   `short:"j" default:"${config_journalctl}" placeholder:"PATH" help:"Executable to call"`
	Timeout     int      `short:"t" default:"${config_timeout}" placeholder:"T" help:"Aborts check execution after T seconds (0 = no limit)"`
	Span        string   `short:"s" default:"${config_span}" placeholder:"TIMESPEC" help:"Reads journal entries from the last TIMESPEC (time suffixes accepted)"`
	Lines       int      `short:"l" aliases:"limit" default:"${config_lines}" placeholder:"N" help:"Shows maximum N lines for critical/warning matches (0 = no limit)"`
	NoLimit     bool     `name:"no-limit" help:"Shows all critical/warning matches"`
	Bytes       int      `short:"b" default:"${config_bytes}" placeholder:"B" help:"Truncates output to B bytes total (0 = no limit)"`
	Units       []string `short:"u" name:"unit" placeholder:"UNIT" help:"Only reads entries of UNIT (repeatable)"`
	User        bool     `help:"Reads the user journal instead of the system journal"`
	StateFile   string   `short:"f" name:"statefile" placeholder:"FILE" help:"Continues reading after the position saved in FILE"`
	StateFormat string   `name:"state-format" default:"${config_state_format}" enum:"journal,yaml" help:"State file owner: journalctl --cursor-file (journal) or a YAML cursor record (yaml)"`
	MetricsFile string   `name:"metrics-file" placeholder:"FILE" help:"Writes Prometheus textfile collector metrics to FILE"`

	Rules string `arg:"" optional:"" name:"rules" placeholder:"RULES_YAML" help:"Match patterns (file name or URL)"`
}

func applyCheckDefaults(cfg *config.Config, c *CheckCmd) {
	if cfg == nil {
		return
	}
	if c.Rules == "" {
		c.Rules = cfg.Check.Rules
	}
	if len(c.Units) == 0 {
		c.Units = cfg.Check.Units
	}
	if !c.User {
		c.User = cfg.Check.User
	}
	if c.StateFile == "" {
		c.StateFile = cfg.Check.StateFile
	}
	if c.MetricsFile == "" {
		c.MetricsFile = cfg.Check.MetricsFile
	}
}

// Run executes the check. Every outcome, including failures, is written to
// stdout; globals.ExitCode carries the plugin status.
func (c *CheckCmd) Run(globals *Globals) error {
	applyCheckDefaults(globals.config(), c)
	logger := globals.logger()
	clk := globals.clock()
	emitter := output.NewEmitter(globals.Format, globals.Stdout)

	start := clk.Now()
	ctx := context.Background()
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = clk.WithTimeout(ctx, time.Duration(c.Timeout)*time.Second)
		defer cancel()
	}

	res, err := c.execute(ctx, logger)
	res.Duration = clk.Since(start)

	var metrics *output.Metrics
	if c.MetricsFile != "" {
		metrics = output.NewMetrics()
	}

	if err != nil {
		f := failureFor(err, c.Timeout)
		logger.Debug("check failed", zap.String("code", f.Code), zap.Error(err))
		globals.ExitCode = domain.StatusUnknown.ExitCode()
		if metrics != nil {
			metrics.ObserveFailure(res.Duration)
			c.writeMetrics(metrics, logger)
		}
		return emitter.WriteFailure(f)
	}

	globals.ExitCode = res.Outcome.Status.Kind.ExitCode()
	if metrics != nil {
		metrics.ObserveResult(res)
		c.writeMetrics(metrics, logger)
	}
	return emitter.WriteResult(res)
}

// execute loads the rules, runs journalctl and evaluates its output.
func (c *CheckCmd) execute(ctx context.Context, logger *zap.Logger) (output.Result, error) {
	var res output.Result
	if c.Rules == "" {
		return res, &CLIError{
			Code:    codeInvalidFlags,
			Message: "no rules given",
			Hint:    "Pass RULES_YAML as argument or set check.rules in the configuration file",
		}
	}
	if c.Lines < 0 || c.Bytes < 0 {
		return res, &CLIError{Code: codeInvalidFlags, Message: "--lines and --bytes must not be negative"}
	}
	format, err := journal.ParseStateFormat(c.StateFormat)
	if err != nil {
		return res, &CLIError{Code: codeInvalidFlags, Message: err.Error()}
	}

	r, err := rules.Load(ctx, c.Rules)
	if err != nil {
		return res, err
	}
	crit, critExc := r.Critical.Len()
	warn, warnExc := r.Warning.Len()
	logger.Debug("rules loaded",
		zap.String("source", c.Rules),
		zap.Int("critical_patterns", crit),
		zap.Int("critical_exceptions", critExc),
		zap.Int("warning_patterns", warn),
		zap.Int("warning_exceptions", warnExc))
	if len(r.UnknownKeys) > 0 {
		logger.Warn("rules document has unknown keys",
			zap.String("source", c.Rules),
			zap.Strings("keys", r.UnknownKeys))
	}

	runner := journal.NewRunner(journal.Options{
		Journalctl:  c.Journalctl,
		Span:        c.Span,
		Units:       c.Units,
		User:        c.User,
		StateFile:   c.StateFile,
		StateFormat: format,
	}, logger)
	out, err := runner.Exec(ctx)
	if err != nil {
		return res, err
	}
	res.Retried = out.Retried

	if len(out.Stdout) == 0 {
		res.Outcome = report.NoOutput()
		return res, nil
	}
	res.Outcome = report.Evaluate(out.Stdout, r, c.reportOptions())
	return res, nil
}

func (c *CheckCmd) reportOptions() report.Options {
	opts := report.Options{Limit: c.Lines, Bytes: c.Bytes}
	if c.NoLimit {
		opts.Limit = 0
	}
	return opts
}

// writeMetrics never changes the plugin status; a broken metrics path is
// only logged.
func (c *CheckCmd) writeMetrics(m *output.Metrics, logger *zap.Logger) {
	if err := m.WriteFile(c.MetricsFile); err != nil {
		logger.Warn("cannot write metrics file", zap.String("path", c.MetricsFile), zap.Error(err))
	}
}
