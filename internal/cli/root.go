package cli

import (
	"io"
	"os"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/vburojevic/check_journal/internal/config"
)

// CLI is the root command structure for check_journal
type CLI struct {
	// Global flags
	Format  string `default:"${config_format}" enum:"text,ndjson" help:"Output format"`
	Quiet   bool   `short:"q" help:"Only print matched lines in auxiliary commands"`
	Verbose bool   `short:"v" help:"Log debug output (journalctl invocation, cursor handling) to stderr"`

	// Commands
	Check   CheckCmd   `cmd:"" default:"withargs" help:"Check recent journal entries against rules"`
	Rules   RulesCmd   `cmd:"" help:"Validate a rules document or classify sample lines"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`
	Doctor  DoctorCmd  `cmd:"" help:"Check journalctl, rules and state file setup"`
	Schema  SchemaCmd  `cmd:"" help:"Output JSON Schema for NDJSON output types"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Meta    *config.Meta
	Clock   clock.Clock
	Logger  *zap.Logger

	// ExitCode is the plugin status of the last check, returned by main.
	ExitCode int
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:  cli.Format,
		Quiet:   cli.Quiet,
		Verbose: cli.Verbose,
		Stdin:   os.Stdin,
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Config:  cfg,
		Clock:   clock.New(),
	}

	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	g.Logger = newLogger(g.Verbose, g.Stderr)
	return g
}

func (g *Globals) config() *config.Config {
	if g.Config == nil {
		g.Config = config.Default()
	}
	return g.Config
}

func (g *Globals) clock() clock.Clock {
	if g.Clock == nil {
		g.Clock = clock.New()
	}
	return g.Clock
}

func (g *Globals) logger() *zap.Logger {
	if g.Logger == nil {
		g.Logger = newLogger(g.Verbose, g.Stderr)
	}
	return g.Logger
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return newJSONEncoder(globals.Stdout).Encode(map[string]string{
			"type":    "version",
			"version": Version,
			"commit":  Commit,
		})
	}
	_, err := io.WriteString(globals.Stdout, "check_journal version "+Version+" ("+Commit+")\n")
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
