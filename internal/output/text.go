package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/vburojevic/check_journal/internal/domain"
)

// PluginName prefixes every status line
const PluginName = "check_journal"

// Failure describes a run that could not produce a status
type Failure struct {
	Code    string
	Message string
	Hint    string
	Stdout  string // captured journalctl output, if any
	Stderr  string
}

// TextWriter renders monitoring plugin output: one status line followed by
// the match listing.
type TextWriter struct {
	w     io.Writer
	color bool
}

// NewTextWriter creates a text writer. Keywords are styled only when w is a
// terminal.
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w, color: IsTerminal(w)}
}

func (w *TextWriter) keyword(kind domain.StatusKind) string {
	if !w.color {
		return string(kind)
	}
	return KeywordStyle(kind).Render(string(kind))
}

// WriteResult outputs the status line and message of a finished run
func (w *TextWriter) WriteResult(r Result) error {
	st := r.Outcome.Status
	if _, err := fmt.Fprintf(w.w, "%s %s - %s\n", PluginName, w.keyword(st.Kind), st); err != nil {
		return err
	}
	_, err := w.w.Write(r.Outcome.Message)
	return err
}

// WriteFailure outputs an UNKNOWN status line plus any captured output
func (w *TextWriter) WriteFailure(f Failure) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s - %s\n", PluginName, w.keyword(domain.StatusUnknown), f.Message)
	if f.Stdout != "" {
		b.WriteString("\n*** stdout ***\n")
		b.WriteString(f.Stdout)
		if !strings.HasSuffix(f.Stdout, "\n") {
			b.WriteByte('\n')
		}
	}
	if f.Stderr != "" {
		b.WriteString("\n*** stderr ***\n")
		b.WriteString(f.Stderr)
		b.WriteByte('\n')
	}
	if f.Hint != "" {
		b.WriteString("\nHint: ")
		b.WriteString(f.Hint)
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w.w, b.String())
	return err
}
