package cli

import (
	"fmt"
	"strings"

	"github.com/vburojevic/check_journal/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.config()
	source := ""
	var envKeys []string
	if globals.Meta != nil {
		source = globals.Meta.ConfigFile
		envKeys = globals.Meta.EnvKeys
	}

	if globals.Format == "ndjson" {
		return newJSONEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type":     "config",
			"format":   cfg.Format,
			"quiet":    cfg.Quiet,
			"verbose":  cfg.Verbose,
			"check":    cfg.Check,
			"source":   source,
			"env_keys": envKeys,
		})
	}

	out := globals.Stdout
	fmt.Fprintln(out, "Current Configuration:")
	fmt.Fprintln(out, "")
	fmt.Fprintf(out, "  format:  %s\n", cfg.Format)
	fmt.Fprintf(out, "  quiet:   %v\n", cfg.Quiet)
	fmt.Fprintf(out, "  verbose: %v\n", cfg.Verbose)
	fmt.Fprintln(out, "")
	fmt.Fprintln(out, "Check:")
	fmt.Fprintf(out, "  journalctl:   %s\n", cfg.Check.Journalctl)
	fmt.Fprintf(out, "  span:         %s\n", cfg.Check.Span)
	fmt.Fprintf(out, "  timeout:      %d\n", cfg.Check.Timeout)
	fmt.Fprintf(out, "  lines:        %d\n", cfg.Check.Lines)
	fmt.Fprintf(out, "  bytes:        %d\n", cfg.Check.Bytes)
	fmt.Fprintf(out, "  state_format: %s\n", cfg.Check.StateFormat)
	if len(cfg.Check.Units) > 0 {
		fmt.Fprintf(out, "  units:        %s\n", strings.Join(cfg.Check.Units, ", "))
	}
	if cfg.Check.User {
		fmt.Fprintf(out, "  user:         %v\n", cfg.Check.User)
	}
	if cfg.Check.StateFile != "" {
		fmt.Fprintf(out, "  statefile:    %s\n", cfg.Check.StateFile)
	}
	if cfg.Check.Rules != "" {
		fmt.Fprintf(out, "  rules:        %s\n", cfg.Check.Rules)
	}
	if cfg.Check.MetricsFile != "" {
		fmt.Fprintf(out, "  metrics_file: %s\n", cfg.Check.MetricsFile)
	}

	if source != "" {
		fmt.Fprintln(out, "")
		fmt.Fprintf(out, "Loaded from: %s\n", source)
	}
	if len(envKeys) > 0 {
		fmt.Fprintf(out, "Environment overrides: %s\n", strings.Join(envKeys, ", "))
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		return newJSONEncoder(globals.Stdout).Encode(map[string]interface{}{
			"type": "config_path",
			"path": path,
		})
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.check_journal.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.check_journal.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/check_journal/config.yaml")
		fmt.Fprintln(globals.Stdout, "  /etc/check_journal/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

const sampleConfig = `# check_journal configuration file
# Place this file at /etc/check_journal/config.yaml, ~/.check_journal.yaml
# or ./.check_journal.yaml. Command line flags override every value, and
# CHECK_JOURNAL_* environment variables override this file.

# Output format: "text" (monitoring plugin, default) or "ndjson"
format: text

# Log debug output to stderr
verbose: false

check:
  # journalctl executable
  journalctl: journalctl

  # Relative span read when no state file position is available
  span: 601s

  # Abort the run after this many seconds (0 = no limit)
  timeout: 60

  # Matched lines shown per category (0 = no limit)
  lines: 25

  # Total size of the match listing in bytes (0 = no limit)
  bytes: 8192

  # Restrict to these units
  # units:
  #   - nginx.service
  #   - sshd.service

  # Read the user journal
  # user: false

  # Continue after the position stored in this file
  # statefile: /var/lib/check_journal/cursor

  # "journal" lets journalctl own the state file, "yaml" stores a
  # "cursor:" record written by check_journal
  state_format: journal

  # Rules document (file name or URL)
  # rules: /etc/check_journal/rules.yaml

  # Prometheus textfile collector output
  # metrics_file: /var/lib/node_exporter/textfile/check_journal.prom
`

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	_, err := fmt.Fprint(globals.Stdout, sampleConfig)
	return err
}
