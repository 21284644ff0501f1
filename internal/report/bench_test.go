package report

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/vburojevic/check_journal/internal/rules"
)

func benchJournal(n int) []byte {
	var buf bytes.Buffer
	for i := 0; i < n; i++ {
		switch i % 10 {
		case 0:
			fmt.Fprintf(&buf, "Jan 01 00:00:%02d host app[%d]: connection error\n", i%60, i)
		case 1:
			fmt.Fprintf(&buf, "Jan 01 00:00:%02d host app[%d]: WARN retrying\n", i%60, i)
		default:
			fmt.Fprintf(&buf, "Jan 01 00:00:%02d host app[%d]: request served in 3ms\n", i%60, i)
		}
	}
	return buf.Bytes()
}

func BenchmarkEvaluate(b *testing.B) {
	r, _ := rules.New(rules.Document{
		CriticalPatterns:   []string{"(?i)error", "(?i)abort"},
		CriticalExceptions: []string{`\b0 errors`},
		WarningPatterns:    []string{"WARN", "(?i)fail"},
		WarningExceptions:  []string{"fail2ban"},
	})
	raw := benchJournal(10000)
	opts := Options{Limit: 25, Bytes: 8192}

	b.SetBytes(int64(len(raw)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Evaluate(raw, r, opts)
	}
}

func BenchmarkCollect(b *testing.B) {
	r, _ := rules.New(rules.Document{CriticalPatterns: []string{"error"}})
	raw := benchJournal(10000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Collect(raw, r)
	}
}
