package contract

import (
	"bufio"
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

// Limits for subprocess I/O.
const (
	stderrTailBytes   = 8 * 1024         // Bytes of stderr kept for diagnostics
	initialLineBuffer = 64 * 1024        // Starting size of the line scanner buffer
	maxLineBytes      = 1024 * 1024      // Longest output line accepted before failing
	processWaitDelay  = 10 * time.Second // Grace period for pipes after the process exits
)

// tailBuffer is an io.Writer that keeps only the last cap bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	cap int
}

func newTailBuffer(capacity int) *tailBuffer {
	return &tailBuffer{cap: capacity}
}

// Write implements io.Writer. It never fails.
func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(p)
	if n >= t.cap {
		t.buf = append(t.buf[:0], p[n-t.cap:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.cap; over > 0 {
		t.buf = append(t.buf[:0], t.buf[over:]...)
	}
	return n, nil
}

// String returns the retained tail.
func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineBytes)
	return scanner
}

// process wraps a started git command together with its stderr tail.
type process struct {
	cmd    *exec.Cmd
	stderr *tailBuffer
	op     string
	args   []string
}

// waitError converts the result of cmd.Wait into a *ToolError, or nil.
func (p *process) waitError(err error) error {
	if err == nil {
		return nil
	}
	stderr := p.stderr.String()
	te := &ToolError{Kind: ErrExternalTool, Op: p.op, Args: p.args, ExitCode: -1, Stderr: stderr}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		te.ExitCode = exitErr.ExitCode()
		if isNotFoundStderr(stderr) {
			te.Kind = ErrCommitNotFound
		}
		return te
	}
	te.Err = err
	return te
}

// startError converts a failure to start git into a *ToolError.
func startError(op string, args []string, err error) error {
	te := &ToolError{Kind: ErrExternalTool, Op: op, Args: args, ExitCode: -1, Err: err}
	if errors.Is(err, exec.ErrNotFound) {
		te.Stderr = "ensure Git is installed and available on your PATH"
	}
	return te
}

// parseError builds the ErrParse error for an offending line.
func parseError(op string, line string, cause error) error {
	return &ToolError{Kind: ErrParse, Op: op, ExitCode: -1, Line: line, Err: cause}
}

// streamLines runs cmd and yields its stdout line by line.
// The process is always reaped: on early break it is killed first.
// The parent context's error is yielded when it caused the stop.
func streamLines(ctx context.Context, op string, mkCmd func(context.Context) *exec.Cmd) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		procCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := mkCmd(procCtx)
		p := &process{cmd: cmd, stderr: newTailBuffer(stderrTailBytes), op: op, args: cmd.Args[1:]}
		cmd.Stderr = p.stderr
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield("", startError(op, p.args, err))
			return
		}
		if err := cmd.Start(); err != nil {
			yield("", startError(op, p.args, err))
			return
		}

		scanner := newLineScanner(stdout)
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				cancel()
				_ = cmd.Wait()
				return
			}
		}
		scanErr := scanner.Err()
		if scanErr != nil {
			cancel()
		}
		waitErr := cmd.Wait()

		switch {
		case ctx.Err() != nil:
			yield("", ctx.Err())
		case scanErr != nil:
			yield("", parseError(op, "", scanErr))
		case waitErr != nil:
			yield("", p.waitError(waitErr))
		}
	}
}

// pipeLines runs cmd with its stdin fed from input and yields its stdout line by line.
// A dedicated goroutine writes stdin while the caller drains stdout, so neither
// side can fill a pipe buffer and block the other.
func pipeLines(ctx context.Context, op string, mkCmd func(context.Context) *exec.Cmd, input iter.Seq2[string, error]) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		procCtx, cancel := context.WithCancel(ctx)
		defer cancel()

		cmd := mkCmd(procCtx)
		p := &process{cmd: cmd, stderr: newTailBuffer(stderrTailBytes), op: op, args: cmd.Args[1:]}
		cmd.Stderr = p.stderr
		stdin, err := cmd.StdinPipe()
		if err != nil {
			yield("", startError(op, p.args, err))
			return
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			yield("", startError(op, p.args, err))
			return
		}
		if err := cmd.Start(); err != nil {
			yield("", startError(op, p.args, err))
			return
		}

		var g errgroup.Group
		g.Go(func() error {
			defer func() { _ = stdin.Close() }()
			w := bufio.NewWriter(stdin)
			for line, err := range input {
				if err != nil {
					return err
				}
				if _, err := w.WriteString(line); err != nil {
					return writeError(procCtx, err)
				}
				if err := w.WriteByte('\n'); err != nil {
					return writeError(procCtx, err)
				}
			}
			return writeError(procCtx, w.Flush())
		})

		scanner := newLineScanner(stdout)
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				cancel()
				_ = g.Wait()
				_ = cmd.Wait()
				return
			}
		}
		scanErr := scanner.Err()
		if scanErr != nil {
			cancel()
		}
		writeErr := g.Wait()
		if writeErr != nil {
			// The upstream failed; stop the reporter so Wait returns.
			cancel()
		}
		waitErr := cmd.Wait()

		switch {
		case ctx.Err() != nil:
			yield("", ctx.Err())
		case writeErr != nil && !errors.Is(writeErr, errPipeClosed):
			yield("", writeErr)
		case scanErr != nil:
			yield("", parseError(op, "", scanErr))
		case waitErr != nil:
			yield("", p.waitError(waitErr))
		case writeErr != nil:
			yield("", &ToolError{Kind: ErrExternalTool, Op: op, Args: p.args, ExitCode: -1, Err: writeErr, Stderr: p.stderr.String()})
		}
	}
}

// errPipeClosed marks a stdin write that failed because the reader went away.
var errPipeClosed = errors.New("stdin closed by reader")

// writeError wraps a stdin write failure. When the reader died, the reader's
// own exit status is the more useful error, so the write error is demoted.
func writeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) || errors.Is(err, os.ErrClosed) || errors.Is(err, syscall.EPIPE) {
		return errors.Join(errPipeClosed, err)
	}
	return err
}
