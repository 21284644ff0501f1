// Package report classifies journal output and renders the bounded match
// listing returned to the monitoring framework.
package report

import (
	"bytes"
	"unicode/utf8"

	"github.com/vburojevic/check_journal/internal/domain"
	"github.com/vburojevic/check_journal/internal/rules"
)

// TruncationMarker is appended when the rendered message exceeds the byte budget.
const TruncationMarker = "\n[output truncated]\n"

// metaPrefixes identify lines journalctl prints about the journal itself.
var metaPrefixes = [][]byte{
	[]byte("-- Logs begin "),
	[]byte("-- cursor: "),
	[]byte("-- No entries --"),
}

// Classifier assigns a category to one log line
type Classifier interface {
	Classify(line []byte) rules.Category
}

// Options bounds the rendered message. Zero means unlimited.
type Options struct {
	Limit int // lines shown per category
	Bytes int // total message size
}

// Collection holds matched lines in original order. Each line is a
// sub-slice of the raw buffer passed to Collect and must not outlive it.
type Collection struct {
	Critical [][]byte
	Warning  [][]byte
}

// Collect splits raw into lines and sorts them by category. Empty lines and
// journal meta lines are never classified.
func Collect(raw []byte, c Classifier) Collection {
	var col Collection
	for len(raw) > 0 {
		line := raw
		if i := bytes.IndexByte(raw, '\n'); i >= 0 {
			line, raw = raw[:i:i], raw[i+1:]
		} else {
			raw = nil
		}
		if len(line) == 0 || IsMetaLine(line) {
			continue
		}
		switch c.Classify(line) {
		case rules.Critical:
			col.Critical = append(col.Critical, line)
		case rules.Warning:
			col.Warning = append(col.Warning, line)
		}
	}
	return col
}

// IsMetaLine reports whether line is printed by journalctl about the
// journal itself rather than being an entry.
func IsMetaLine(line []byte) bool {
	for _, p := range metaPrefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// Status derives the run severity from the true match counts
func (col Collection) Status() domain.Status {
	c, w := len(col.Critical), len(col.Warning)
	switch {
	case c > 0:
		return domain.Critical(c, w)
	case w > 0:
		return domain.Warning(w)
	default:
		return domain.OK("no matches")
	}
}

// Render formats the listing, critical section first, applying the line
// limit per category and then the byte budget.
func (col Collection) Render(opts Options) []byte {
	var buf bytes.Buffer
	writeSection(&buf, "critical", col.Critical, opts.Limit)
	writeSection(&buf, "warning", col.Warning, opts.Limit)
	return capBytes(buf.Bytes(), opts.Bytes)
}

func writeSection(buf *bytes.Buffer, title string, lines [][]byte, limit int) {
	if len(lines) == 0 {
		return
	}
	truncated := limit > 0 && len(lines) > limit
	buf.WriteString("\n*** ")
	buf.WriteString(title)
	buf.WriteString(" hits")
	if truncated {
		buf.WriteString(" (truncated)")
	}
	buf.WriteString(" ***\n\n")
	if truncated {
		lines = lines[:limit]
	}
	for _, l := range lines {
		buf.Write(l)
		buf.WriteByte('\n')
	}
}

// capBytes cuts msg to at most max bytes without splitting a UTF-8 sequence
// and appends TruncationMarker.
func capBytes(msg []byte, max int) []byte {
	if max <= 0 || len(msg) <= max {
		return msg
	}
	cut := max
	for cut > 0 && cut < len(msg) && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	out := make([]byte, 0, cut+len(TruncationMarker))
	out = append(out, msg[:cut]...)
	return append(out, TruncationMarker...)
}

// Evaluate classifies raw journal output and produces the run outcome
func Evaluate(raw []byte, c Classifier, opts Options) domain.Outcome {
	col := Collect(raw, c)
	return domain.Outcome{Status: col.Status(), Message: col.Render(opts)}
}

// NoOutput is the outcome for a successful journalctl run that printed
// nothing. It usually points at a wrong span or unit filter.
func NoOutput() domain.Outcome {
	return domain.Outcome{Status: domain.OK("no output")}
}
