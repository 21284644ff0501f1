package output

import (
	"io"
	"time"

	"github.com/vburojevic/check_journal/internal/domain"
)

// Result is everything the presentation layer needs about a finished run
type Result struct {
	Outcome  domain.Outcome
	Retried  bool
	Duration time.Duration
}

// Emitter writes the final record of a check run in the selected format.
type Emitter interface {
	WriteResult(r Result) error
	WriteFailure(f Failure) error
}

// NewEmitter returns an NDJSON emitter for format "ndjson" and the plugin
// text emitter otherwise.
func NewEmitter(format string, w io.Writer) Emitter {
	if format == "ndjson" {
		return NewNDJSONWriter(w)
	}
	return NewTextWriter(w)
}
