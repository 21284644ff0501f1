package output

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/vburojevic/check_journal/internal/domain"
)

// NDJSONWriter writes check records as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // journal lines are passed through verbatim
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// MatchOutput is emitted by `rules match` for every classified line
type MatchOutput struct {
	Type          string `json:"type"` // Always "match"
	SchemaVersion int    `json:"schemaVersion"`
	Line          int    `json:"line"` // 1-based input line number
	Category      string `json:"category"`
	Text          string `json:"text"`
}

// RulesOutput summarizes a validated rules document
type RulesOutput struct {
	Type               string `json:"type"` // Always "rules"
	SchemaVersion      int    `json:"schemaVersion"`
	Source             string `json:"source"`
	CriticalPatterns   int    `json:"critical_patterns"`
	CriticalExceptions int    `json:"critical_exceptions"`
	WarningPatterns    int    `json:"warning_patterns"`
	WarningExceptions  int    `json:"warning_exceptions"`

	UnknownKeys []string `json:"unknown_keys,omitempty"`
}

// WriteResult outputs the result record of a finished run
func (w *NDJSONWriter) WriteResult(r Result) error {
	out := domain.NewResultOutput(r.Outcome)
	out.SchemaVersion = SchemaVersion
	out.Message = messageLines(r.Outcome.Message)
	out.Retried = r.Retried
	out.DurationMs = r.Duration.Milliseconds()
	return w.encoder.Encode(out)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteFailure outputs an error record carrying captured stderr
func (w *NDJSONWriter) WriteFailure(f Failure) error {
	err := domain.NewErrorOutput(f.Code, f.Message)
	err.Hint = f.Hint
	err.Stderr = f.Stderr
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteMatch outputs the classification of one input line
func (w *NDJSONWriter) WriteMatch(line int, category, text string) error {
	return w.encoder.Encode(&MatchOutput{
		Type:          "match",
		SchemaVersion: SchemaVersion,
		Line:          line,
		Category:      category,
		Text:          text,
	})
}

// WriteRules outputs the pattern counts of a rules document
func (w *NDJSONWriter) WriteRules(r *RulesOutput) error {
	r.Type = "rules"
	r.SchemaVersion = SchemaVersion
	return w.encoder.Encode(r)
}

// messageLines splits a rendered listing into lines without the leading
// and trailing blank ones.
func messageLines(msg []byte) []string {
	s := strings.Trim(string(msg), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
