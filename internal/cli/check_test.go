package cli

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const journalMessage = "\n*** critical hits ***\n\n" +
	"Jan 01 00:10:00 host app[1]: connection error\n" +
	"\n*** warning hits ***\n\n" +
	"Jan 01 00:12:00 host app[1]: WARN disk 91% full\n"

// stubJournalctl writes a fake journalctl that records its arguments, one
// invocation per line, in $DIR/args before running body.
func stubJournalctl(t *testing.T, body string) (path, dir string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub journalctl needs a POSIX shell")
	}
	dir = t.TempDir()
	path = filepath.Join(dir, "journalctl")
	script := "#!/bin/sh\nDIR='" + dir + "'\necho \"$@\" >> \"$DIR/args\"\n" + body
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, dir
}

// catJournal is a stub body printing the journal fixture
func catJournal(t *testing.T) string {
	return "cat '" + testdataPath(t, "journal.txt") + "'\n"
}

// newCheckCmd returns a CheckCmd with the flag defaults kong would apply
func newCheckCmd(journalctl, rules string) *CheckCmd {
	return &CheckCmd{
		Journalctl:  journalctl,
		Timeout:     60,
		Span:        "601s",
		Lines:       25,
		Bytes:       8192,
		StateFormat: "journal",
		Rules:       rules,
	}
}

func TestCheckCmd_Run(t *testing.T) {
	t.Run("critical and warning matches", func(t *testing.T) {
		stub, dir := stubJournalctl(t, catJournal(t))
		globals, stdout, stderr := testGlobals("text")

		err := newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals)
		require.NoError(t, err)

		assert.Equal(t, 2, globals.ExitCode)
		assert.Equal(t,
			"check_journal CRITICAL - 1 critical, 1 warning line(s) found\n"+journalMessage,
			stdout.String())
		assert.Empty(t, stderr.String())

		args, err := os.ReadFile(filepath.Join(dir, "args"))
		require.NoError(t, err)
		assert.Equal(t, "--no-pager --since=-601s\n", string(args))
	})

	t.Run("warning only", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "echo 'host app: WARN low memory'\n")
		globals, stdout, _ := testGlobals("text")

		err := newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals)
		require.NoError(t, err)

		assert.Equal(t, 1, globals.ExitCode)
		assert.Equal(t,
			"check_journal WARNING - 1 warning line(s) found\n\n*** warning hits ***\n\nhost app: WARN low memory\n",
			stdout.String())
	})

	t.Run("no matches", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "echo 'host sshd: accepted key'\n")
		globals, stdout, _ := testGlobals("text")

		err := newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals)
		require.NoError(t, err)

		assert.Equal(t, 0, globals.ExitCode)
		assert.Equal(t, "check_journal OK - no matches\n", stdout.String())
	})

	t.Run("empty journal", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "")
		globals, stdout, _ := testGlobals("text")

		err := newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals)
		require.NoError(t, err)

		assert.Equal(t, 0, globals.ExitCode)
		assert.Equal(t, "check_journal OK - no output\n", stdout.String())
	})

	t.Run("flags reach journalctl", func(t *testing.T) {
		stub, dir := stubJournalctl(t, "")
		globals, _, _ := testGlobals("text")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.Span = "1h"
		cmd.Units = []string{"nginx.service", "sshd.service"}
		cmd.User = true

		require.NoError(t, cmd.Run(globals))

		args, err := os.ReadFile(filepath.Join(dir, "args"))
		require.NoError(t, err)
		assert.Equal(t, "--no-pager --since=-1h --unit=nginx.service --unit=sshd.service --user\n", string(args))
	})

	t.Run("config supplies rules and units", func(t *testing.T) {
		stub, dir := stubJournalctl(t, catJournal(t))
		globals, _, _ := testGlobals("text")
		globals.Config.Check.Rules = testdataPath(t, "rules.yaml")
		globals.Config.Check.Units = []string{"app.service"}

		require.NoError(t, newCheckCmd(stub, "").Run(globals))

		assert.Equal(t, 2, globals.ExitCode)
		args, err := os.ReadFile(filepath.Join(dir, "args"))
		require.NoError(t, err)
		assert.Contains(t, string(args), "--unit=app.service")
	})

	t.Run("line limit marks sections truncated", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "printf 'error 1\\nerror 2\\nerror 3\\n'\n")
		globals, stdout, _ := testGlobals("text")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.Lines = 2

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t,
			"check_journal CRITICAL - 3 critical, 0 warning line(s) found\n"+
				"\n*** critical hits (truncated) ***\n\nerror 1\nerror 2\n",
			stdout.String())
	})

	t.Run("no-limit overrides lines", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "printf 'error 1\\nerror 2\\nerror 3\\n'\n")
		globals, stdout, _ := testGlobals("text")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.Lines = 1
		cmd.NoLimit = true

		require.NoError(t, cmd.Run(globals))

		assert.Contains(t, stdout.String(), "error 1\nerror 2\nerror 3\n")
		assert.NotContains(t, stdout.String(), "(truncated)")
	})

	t.Run("byte budget", func(t *testing.T) {
		stub, _ := stubJournalctl(t, catJournal(t))
		globals, stdout, _ := testGlobals("text")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.Bytes = 10

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t,
			"check_journal CRITICAL - 1 critical, 1 warning line(s) found\n"+
				journalMessage[:10]+"\n[output truncated]\n",
			stdout.String())
	})

	t.Run("ndjson result", func(t *testing.T) {
		stub, _ := stubJournalctl(t, catJournal(t))
		globals, stdout, _ := testGlobals("ndjson")

		require.NoError(t, newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals))

		out := stdout.String()
		assert.Equal(t, 2, globals.ExitCode)
		assert.Equal(t, "result", gjson.Get(out, "type").String())
		assert.Equal(t, "CRITICAL", gjson.Get(out, "status").String())
		assert.Equal(t, int64(2), gjson.Get(out, "exit_code").Int())
		assert.Equal(t, int64(1), gjson.Get(out, "critical").Int())
		assert.Equal(t, int64(1), gjson.Get(out, "warning").Int())
		assert.Equal(t, "*** critical hits ***", gjson.Get(out, "message.0").String())
		assert.False(t, gjson.Get(out, "retried").Bool())
	})
}

func TestCheckCmd_Failures(t *testing.T) {
	t.Run("missing rules", func(t *testing.T) {
		globals, stdout, _ := testGlobals("text")

		err := newCheckCmd("journalctl", "").Run(globals)
		require.NoError(t, err)

		assert.Equal(t, 3, globals.ExitCode)
		assert.True(t, strings.HasPrefix(stdout.String(), "check_journal UNKNOWN - no rules given\n"))
		assert.Contains(t, stdout.String(), "Hint: Pass RULES_YAML")
	})

	t.Run("negative limits", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		cmd := newCheckCmd("journalctl", testdataPath(t, "rules.yaml"))
		cmd.Bytes = -1

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		assert.Equal(t, codeInvalidFlags, gjson.Get(stdout.String(), "code").String())
	})

	t.Run("invalid rules never run journalctl", func(t *testing.T) {
		stub, dir := stubJournalctl(t, "")
		globals, stdout, _ := testGlobals("ndjson")

		require.NoError(t, newCheckCmd(stub, testdataPath(t, "invalid.yaml")).Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		assert.Equal(t, codeRulesInvalid, gjson.Get(stdout.String(), "code").String())
		assert.NoFileExists(t, filepath.Join(dir, "args"))
	})

	t.Run("journalctl exits non-zero", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "echo partial\necho 'No journal files were found.' >&2\nexit 1\n")
		globals, stdout, _ := testGlobals("text")

		require.NoError(t, newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		out := stdout.String()
		assert.True(t, strings.HasPrefix(out, "check_journal UNKNOWN - "+stub+" failed with exit code 1: No journal files were found.\n"))
		assert.Contains(t, out, "\n*** stdout ***\npartial\n")
		assert.Contains(t, out, "\n*** stderr ***\nNo journal files were found.\n")
		assert.Contains(t, out, "Hint: Add the monitoring user to the systemd-journal group")
	})

	t.Run("journalctl killed by a signal", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "echo partial\nkill -9 $$\n")
		globals, stdout, _ := testGlobals("ndjson")

		require.NoError(t, newCheckCmd(stub, testdataPath(t, "rules.yaml")).Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		out := stdout.String()
		assert.Equal(t, codeJournalFailed, gjson.Get(out, "code").String())
		assert.Equal(t, stub+" was terminated (signal: killed)", gjson.Get(out, "message").String())
		assert.NotContains(t, out, "<nil>")
		assert.Contains(t, gjson.Get(out, "hint").String(), "killed by a signal")
	})

	t.Run("journalctl missing", func(t *testing.T) {
		globals, stdout, _ := testGlobals("ndjson")
		missing := filepath.Join(t.TempDir(), "journalctl")

		require.NoError(t, newCheckCmd(missing, testdataPath(t, "rules.yaml")).Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		assert.Equal(t, codeJournalFailed, gjson.Get(stdout.String(), "code").String())
		assert.Contains(t, gjson.Get(stdout.String(), "hint").String(), "journalctl not found")
	})

	t.Run("timeout", func(t *testing.T) {
		stub, _ := stubJournalctl(t, "exec sleep 30\n")
		globals, stdout, _ := testGlobals("text")
		globals.Clock = clock.New()
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.Timeout = 1

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t, 3, globals.ExitCode)
		assert.True(t, strings.HasPrefix(stdout.String(), "check_journal UNKNOWN - timed out after 1s\n"))
	})
}

func TestCheckCmd_StateFile(t *testing.T) {
	t.Run("cursor file is passed through", func(t *testing.T) {
		stub, dir := stubJournalctl(t, "")
		globals, _, _ := testGlobals("text")
		state := filepath.Join(t.TempDir(), "cursor")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.StateFile = state

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t, 0, globals.ExitCode)
		args, err := os.ReadFile(filepath.Join(dir, "args"))
		require.NoError(t, err)
		assert.Equal(t, "--no-pager --since=-601s --cursor-file="+state+"\n", string(args))
	})

	t.Run("corrupt cursor is reset once", func(t *testing.T) {
		stub, _ := stubJournalctl(t,
			"if [ \"$(wc -l < \"$DIR/args\")\" -eq 1 ]; then\n"+
				"  echo 'Failed to seek to cursor: Invalid argument' >&2\n  exit 1\nfi\n"+
				"echo 'host app: disk error'\n")

		state := filepath.Join(t.TempDir(), "cursor")
		require.NoError(t, os.WriteFile(state, []byte("garbage"), 0o600))

		globals, stdout, _ := testGlobals("ndjson")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.StateFile = state

		require.NoError(t, cmd.Run(globals))

		out := stdout.String()
		assert.Equal(t, 2, globals.ExitCode)
		assert.True(t, gjson.Get(out, "retried").Bool())
		assert.Equal(t, int64(1), gjson.Get(out, "critical").Int())

		data, err := os.ReadFile(state)
		require.NoError(t, err)
		assert.Empty(t, data)
	})
}

func TestCheckCmd_MetricsFile(t *testing.T) {
	t.Run("result metrics", func(t *testing.T) {
		stub, _ := stubJournalctl(t, catJournal(t))
		globals, _, _ := testGlobals("text")
		metrics := filepath.Join(t.TempDir(), "check_journal.prom")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.MetricsFile = metrics

		require.NoError(t, cmd.Run(globals))

		data, err := os.ReadFile(metrics)
		require.NoError(t, err)
		assert.Contains(t, string(data), `check_journal_matched_lines{severity="critical"} 1`)
		assert.Contains(t, string(data), `check_journal_matched_lines{severity="warning"} 1`)
		assert.Contains(t, string(data), "check_journal_status 2")
	})

	t.Run("failure metrics", func(t *testing.T) {
		globals, _, _ := testGlobals("text")
		metrics := filepath.Join(t.TempDir(), "check_journal.prom")
		cmd := newCheckCmd("journalctl", "")
		cmd.MetricsFile = metrics

		require.NoError(t, cmd.Run(globals))

		data, err := os.ReadFile(metrics)
		require.NoError(t, err)
		assert.Contains(t, string(data), "check_journal_status 3")
	})

	t.Run("unwritable metrics path keeps the status", func(t *testing.T) {
		stub, _ := stubJournalctl(t, catJournal(t))
		globals, stdout, _ := testGlobals("text")
		cmd := newCheckCmd(stub, testdataPath(t, "rules.yaml"))
		cmd.MetricsFile = filepath.Join(t.TempDir(), "missing", "dir", "check_journal.prom")

		require.NoError(t, cmd.Run(globals))

		assert.Equal(t, 2, globals.ExitCode)
		assert.True(t, strings.HasPrefix(stdout.String(), "check_journal CRITICAL"))
	})
}
