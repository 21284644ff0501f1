// Package journal invokes journalctl and recovers from corrupted cursor files.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// seekFailure is printed by journalctl when the stored cursor cannot be used.
const seekFailure = "Failed to seek to cursor"

// waitDelay bounds how long Wait blocks on pipes held open by grandchildren
// after journalctl has been killed.
const waitDelay = 2 * time.Second

// Options configures a journalctl invocation
type Options struct {
	Journalctl  string      // executable to call
	Span        string      // relative time span, e.g. "600s"
	Units       []string    // --unit filters
	User        bool        // query the user journal
	StateFile   string      // optional cursor state file
	StateFormat StateFormat // who owns the state file content
}

// Result is the captured output of a successful invocation
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Retried  bool   // state file was reset and journalctl re-run
	Cursor   string // cursor stored after the run (yaml format only)

	exitErr error // *exec.ExitError of a non-zero or signaled exit
}

// Runner executes journalctl for one check run
type Runner struct {
	opts   Options
	logger *zap.Logger
}

// NewRunner creates a runner. A nil logger disables logging.
func NewRunner(opts Options, logger *zap.Logger) *Runner {
	if opts.Journalctl == "" {
		opts.Journalctl = "journalctl"
	}
	if opts.StateFormat == "" {
		opts.StateFormat = StateJournal
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{opts: opts, logger: logger}
}

// Exec runs journalctl and returns its standard output. If a state file is
// configured and journalctl reports that it could not seek to the stored
// cursor, the state file is reset and journalctl is run exactly once more.
//
// ctx bounds the whole run including the retry; on expiry the child is
// killed and the returned error wraps ErrTimeout.
func (r *Runner) Exec(ctx context.Context) (*Result, error) {
	res, err := r.attempt(ctx)
	if err != nil {
		return nil, err
	}

	if r.opts.StateFile != "" && bytes.Contains(res.Stderr, []byte(seekFailure)) {
		// Probably an old-style or otherwise incompatible state file.
		r.logger.Warn("journalctl could not seek to stored cursor, resetting state file",
			zap.String("statefile", r.opts.StateFile),
			zap.String("stderr", firstLine(string(res.Stderr))))
		if err := ResetStateFile(r.opts.StateFile); err != nil {
			return nil, err
		}
		res, err = r.attempt(ctx)
		if err != nil {
			return nil, err
		}
		res.Retried = true
		if bytes.Contains(res.Stderr, []byte(seekFailure)) {
			return nil, r.execError(res)
		}
	}

	if res.ExitCode != 0 {
		return nil, r.execError(res)
	}

	if r.opts.StateFormat == StateYAML && r.opts.StateFile != "" {
		if err := r.storeCursor(res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// attempt performs a single invocation with freshly built arguments.
func (r *Runner) attempt(ctx context.Context) (*Result, error) {
	cursor, err := r.storedCursor()
	if err != nil {
		return nil, err
	}
	args := r.buildArgs(cursor)
	r.logger.Debug("executing journalctl", zap.String("path", r.opts.Journalctl), zap.Strings("args", args))

	res, err := r.capture(ctx, args)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("journalctl finished",
		zap.Int("exit_code", res.ExitCode),
		zap.Int("stdout_bytes", len(res.Stdout)),
		zap.Int("stderr_bytes", len(res.Stderr)))
	return res, nil
}

func (r *Runner) storedCursor() (string, error) {
	if r.opts.StateFormat != StateYAML || r.opts.StateFile == "" {
		return "", nil
	}
	sf, err := LoadStatefile(r.opts.StateFile)
	if err != nil {
		return "", err
	}
	return sf.Cursor(), nil
}

func (r *Runner) storeCursor(res *Result) error {
	cursor := lastCursor(res.Stdout)
	if cursor == "" {
		// Nothing new was read; keep the previous position.
		return nil
	}
	sf, err := LoadStatefile(r.opts.StateFile)
	if err != nil {
		return err
	}
	if err := sf.UpdateCursor(cursor); err != nil {
		return err
	}
	res.Cursor = cursor
	return nil
}

// buildArgs assembles the journalctl command line
func (r *Runner) buildArgs(cursor string) []string {
	args := []string{"--no-pager", "--since=-" + r.opts.Span}
	for _, u := range r.opts.Units {
		args = append(args, "--unit="+u)
	}
	if r.opts.User {
		args = append(args, "--user")
	}
	if r.opts.StateFile == "" {
		return args
	}
	switch r.opts.StateFormat {
	case StateYAML:
		args = append(args, "--show-cursor")
		if cursor != "" {
			args = append(args, "--after-cursor="+cursor)
		}
	default:
		args = append(args, "--cursor-file="+r.opts.StateFile)
	}
	return args
}

// capture runs the command with stdin on the null device and collects
// stdout and stderr separately.
func (r *Runner) capture(ctx context.Context, args []string) (*Result, error) {
	var outBuf, errBuf bytes.Buffer
	cmd := exec.CommandContext(ctx, r.opts.Journalctl, args...)
	cmd.Stdin = nil
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf
	cmd.WaitDelay = waitDelay

	err := cmd.Run()
	if ctx.Err() != nil {
		return nil, timeoutError(ctx)
	}
	var exitErr *exec.ExitError
	if err != nil && !errors.As(err, &exitErr) && !errors.Is(err, exec.ErrWaitDelay) {
		return nil, &ExecError{Path: r.opts.Journalctl, Code: -1, Err: err}
	}
	res := &Result{
		Stdout:   outBuf.Bytes(),
		Stderr:   errBuf.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}
	if exitErr != nil {
		res.exitErr = exitErr
	}
	return res, nil
}

func (r *Runner) execError(res *Result) *ExecError {
	return &ExecError{
		Path:   r.opts.Journalctl,
		Code:   res.ExitCode,
		Stdout: res.Stdout,
		Stderr: strings.TrimSpace(string(res.Stderr)),
		Err:    res.exitErr,
	}
}

func timeoutError(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrTimeout, ctx.Err())
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
