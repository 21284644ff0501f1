package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/vburojevic/check_journal/internal/output"
	"github.com/vburojevic/check_journal/internal/report"
	"github.com/vburojevic/check_journal/internal/rules"
)

// RulesCmd groups rules tooling
type RulesCmd struct {
	Validate RulesValidateCmd `cmd:"" help:"Load a rules document and report its pattern counts"`
	Match    RulesMatchCmd    `cmd:"" help:"Classify lines from FILE or stdin"`
}

// RulesValidateCmd checks that every pattern of a rules document compiles
type RulesValidateCmd struct {
	Rules string `arg:"" name:"rules" placeholder:"RULES_YAML" help:"Match patterns (file name or URL)"`
}

// Run executes the rules validate command
func (c *RulesValidateCmd) Run(globals *Globals) error {
	r, err := rules.Load(context.Background(), c.Rules)
	if err != nil {
		return outputRulesError(globals, err)
	}

	summary := &output.RulesOutput{Source: c.Rules, UnknownKeys: r.UnknownKeys}
	summary.CriticalPatterns, summary.CriticalExceptions = r.Critical.Len()
	summary.WarningPatterns, summary.WarningExceptions = r.Warning.Len()

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteRules(summary)
	}

	fmt.Fprintf(globals.Stdout, "%s: OK\n", c.Rules)
	fmt.Fprintf(globals.Stdout, "  critical: %d patterns, %d exceptions\n", summary.CriticalPatterns, summary.CriticalExceptions)
	fmt.Fprintf(globals.Stdout, "  warning:  %d patterns, %d exceptions\n", summary.WarningPatterns, summary.WarningExceptions)
	for _, k := range r.UnknownKeys {
		fmt.Fprintf(globals.Stdout, "  ignored unknown key: %s\n", k)
	}
	return nil
}

// RulesMatchCmd shows how each input line would be classified
type RulesMatchCmd struct {
	Rules string `arg:"" name:"rules" placeholder:"RULES_YAML" help:"Match patterns (file name or URL)"`
	File  string `arg:"" optional:"" name:"file" type:"existingfile" help:"Journal excerpt to classify (default: stdin)"`
}

// Run executes the rules match command
func (c *RulesMatchCmd) Run(globals *Globals) error {
	r, err := rules.Load(context.Background(), c.Rules)
	if err != nil {
		return outputRulesError(globals, err)
	}

	data, err := c.readInput(globals)
	if err != nil {
		return outputErrorCommon(globals, codeInvalidFlags, err.Error())
	}

	var ndjson *output.NDJSONWriter
	if globals.Format == "ndjson" {
		ndjson = output.NewNDJSONWriter(globals.Stdout)
	}
	color := output.IsTerminal(globals.Stdout)

	for n, line := range bytes.Split(data, []byte("\n")) {
		if len(line) == 0 || report.IsMetaLine(line) {
			continue
		}
		cat := r.Classify(line)
		if cat == rules.None && globals.Quiet {
			continue
		}
		if ndjson != nil {
			if err := ndjson.WriteMatch(n+1, cat.String(), string(line)); err != nil {
				return err
			}
			continue
		}
		label := fmt.Sprintf("%-8s", cat)
		if color {
			label = categoryStyle(cat).Render(label)
		}
		fmt.Fprintf(globals.Stdout, "%s %s\n", label, line)
	}

	if ndjson == nil && !globals.Quiet {
		status := report.Collect(data, r).Status()
		fmt.Fprintf(globals.Stdout, "\n%s - %s\n", status.Kind, status)
	}
	return nil
}

func (c *RulesMatchCmd) readInput(globals *Globals) ([]byte, error) {
	if c.File != "" {
		return os.ReadFile(c.File)
	}
	in := globals.Stdin
	if in == nil {
		in = os.Stdin
	}
	return io.ReadAll(in)
}

func categoryStyle(cat rules.Category) lipgloss.Style {
	switch cat {
	case rules.Critical:
		return output.Styles.Critical
	case rules.Warning:
		return output.Styles.Warning
	default:
		return output.Styles.Label
	}
}

func outputRulesError(globals *Globals, err error) error {
	f := failureFor(err, 0)
	return outputErrorCommon(globals, f.Code, f.Message, f.Hint)
}
