package cli

import (
	"strings"

	"github.com/vburojevic/check_journal/internal/output"
)

// SchemaCmd outputs JSON Schema for check_journal output types
type SchemaCmd struct {
	Type []string `short:"t" help:"Output types to include (result,error,match,rules,doctor). Default: all"`
}

var schemaTypes = []string{"result", "error", "match", "rules", "doctor"}

// Run executes the schema command
func (c *SchemaCmd) Run(globals *Globals) error {
	schemas := map[string]interface{}{
		"result": resultSchema(),
		"error":  errorSchema(),
		"match":  matchSchema(),
		"rules":  rulesSchema(),
		"doctor": doctorSchema(),
	}

	typesToOutput := c.Type
	if len(typesToOutput) == 0 {
		typesToOutput = schemaTypes
	}

	defs := map[string]interface{}{}
	for _, t := range typesToOutput {
		t = strings.ToLower(strings.TrimSpace(t))
		if schema, ok := schemas[t]; ok {
			defs[t] = schema
		}
	}

	schemaOutput := map[string]interface{}{
		"$schema":       "http://json-schema.org/draft-07/schema#",
		"title":         "check_journal Output Schemas",
		"description":   "JSON Schema definitions for all check_journal NDJSON output types",
		"schemaVersion": output.SchemaVersion,
		"definitions":   defs,
	}

	encoder := newJSONEncoder(globals.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(schemaOutput)
}

// schemaVersionProperty returns the schemaVersion property definition
func schemaVersionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"const":       output.SchemaVersion,
		"description": "Schema version for compatibility detection",
	}
}

func typeProperty(name string) map[string]interface{} {
	return map[string]interface{}{
		"type":  "string",
		"const": name,
	}
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func resultSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Check Result",
		"description": "Outcome of one check run",
		"properties": map[string]interface{}{
			"type":          typeProperty("result"),
			"schemaVersion": schemaVersionProperty(),
			"status": map[string]interface{}{
				"type":        "string",
				"enum":        []string{"OK", "WARNING", "CRITICAL"},
				"description": "Plugin status keyword",
			},
			"exit_code": map[string]interface{}{
				"type":        "integer",
				"enum":        []int{0, 1, 2},
				"description": "Process exit code",
			},
			"summary":  prop("string", "Status line text, e.g. \"2 critical, 1 warning line(s) found\""),
			"critical": prop("integer", "True number of lines matching critical rules"),
			"warning":  prop("integer", "True number of lines matching warning rules"),
			"message": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Rendered match listing, one element per line, after line and byte truncation",
			},
			"retried":     prop("boolean", "The state file was reset after a cursor seek failure and journalctl re-run"),
			"duration_ms": prop("integer", "Run duration in milliseconds"),
		},
		"required": []string{"type", "schemaVersion", "status", "exit_code", "summary", "critical", "warning", "duration_ms"},
	}
}

func errorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Error",
		"description": "A run that ended UNKNOWN, or a failed auxiliary command",
		"properties": map[string]interface{}{
			"type":          typeProperty("error"),
			"schemaVersion": schemaVersionProperty(),
			"code": map[string]interface{}{
				"type":        "string",
				"description": "Machine-readable error code for programmatic handling",
				"enum": []string{
					codeInvalidFlags,
					codeRulesInvalid,
					codeRulesLoadFailed,
					codeJournalFailed,
					codeStateFile,
					codeTimeout,
					codeCheckFailed,
				},
			},
			"message":   prop("string", "Human-readable error description"),
			"hint":      prop("string", "Suggested next step"),
			"stderr":    prop("string", "Trimmed standard error of journalctl"),
			"exit_code": map[string]interface{}{"type": "integer", "const": 3},
		},
		"required": []string{"type", "schemaVersion", "code", "message", "exit_code"},
	}
}

func matchSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Line Classification",
		"description": "Emitted by `rules match` for each input line",
		"properties": map[string]interface{}{
			"type":          typeProperty("match"),
			"schemaVersion": schemaVersionProperty(),
			"line":          prop("integer", "1-based input line number"),
			"category": map[string]interface{}{
				"type": "string",
				"enum": []string{"critical", "warning", "none"},
			},
			"text": prop("string", "The input line"),
		},
		"required": []string{"type", "schemaVersion", "line", "category", "text"},
	}
}

func rulesSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Rules Summary",
		"description": "Emitted by `rules validate` for a document whose patterns all compile",
		"properties": map[string]interface{}{
			"type":                typeProperty("rules"),
			"schemaVersion":       schemaVersionProperty(),
			"source":              prop("string", "File name or URL"),
			"critical_patterns":   prop("integer", "Number of critical patterns"),
			"critical_exceptions": prop("integer", "Number of critical exceptions"),
			"warning_patterns":    prop("integer", "Number of warning patterns"),
			"warning_exceptions":  prop("integer", "Number of warning exceptions"),
			"unknown_keys": map[string]interface{}{
				"type":        "array",
				"items":       map[string]interface{}{"type": "string"},
				"description": "Top-level keys that were ignored",
			},
		},
		"required": []string{"type", "schemaVersion", "source"},
	}
}

func doctorSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"title":       "Doctor Report",
		"description": "System diagnostic report from check_journal doctor",
		"properties": map[string]interface{}{
			"type":          typeProperty("doctor"),
			"schemaVersion": schemaVersionProperty(),
			"timestamp": map[string]interface{}{
				"type":        "string",
				"format":      "date-time",
				"description": "When the check was performed",
			},
			"checks": map[string]interface{}{
				"type":        "array",
				"description": "Individual check results",
				"items": map[string]interface{}{
					"type": "object",
					"properties": map[string]interface{}{
						"name": prop("string", "Name of the check"),
						"status": map[string]interface{}{
							"type":        "string",
							"enum":        []string{"ok", "warning", "error"},
							"description": "Check result status",
						},
						"message": prop("string", "Result message"),
						"details": prop("string", "Additional details or remediation steps"),
					},
					"required": []string{"name", "status"},
				},
			},
			"all_passed":  prop("boolean", "True if all checks passed without errors"),
			"error_count": prop("integer", "Number of checks with error status"),
			"warn_count":  prop("integer", "Number of checks with warning status"),
		},
		"required": []string{"type", "schemaVersion", "timestamp", "checks", "all_passed"},
	}
}
