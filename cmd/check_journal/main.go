package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/check_journal/internal/cli"
	"github.com/vburojevic/check_journal/internal/config"
	"github.com/vburojevic/check_journal/internal/domain"
)

// exitUnknown is the exit code of usage and configuration errors.
var exitUnknown = domain.StatusUnknown.ExitCode()

func main() {
	// Load configuration from files/environment (plus provenance metadata).
	cfg, meta, err := config.LoadWithMeta()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
		meta = nil
	}

	var c cli.CLI

	// Config values become flag defaults; explicit flags override them.
	vars := kong.Vars{
		"config_format":       cfg.Format,
		"config_journalctl":   cfg.Check.Journalctl,
		"config_span":         cfg.Check.Span,
		"config_timeout":      strconv.Itoa(cfg.Check.Timeout),
		"config_lines":        strconv.Itoa(cfg.Check.Lines),
		"config_bytes":        strconv.Itoa(cfg.Check.Bytes),
		"config_state_format": cfg.Check.StateFormat,
	}

	ctx := kong.Parse(&c,
		kong.Name("check_journal"),
		kong.Description("Nagios/Icinga compatible check for systemd journal entries matching rule patterns"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		kong.Exit(func(code int) {
			// usage errors are UNKNOWN; --help still exits 0
			if code != 0 {
				code = exitUnknown
			}
			os.Exit(code)
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	globals.Meta = meta

	err = ctx.Run(globals)
	globals.Logger.Sync() //nolint:errcheck
	if err != nil {
		var cliErr *cli.CLIError
		if !errors.As(err, &cliErr) {
			// CLIErrors have been reported by the command itself
			fmt.Fprintf(os.Stderr, "check_journal UNKNOWN - %v\n", err)
		}
		os.Exit(exitUnknown)
	}
	os.Exit(globals.ExitCode)
}
