package host

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ib-77/shellcall/pkg/rop"
	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/ib-77/shellcall/pkg/rop/fault"
	"github.com/ib-77/shellcall/pkg/rop/lifecycle"
	"github.com/ib-77/shellcall/pkg/rop/pool"
	"go.uber.org/zap"
)

var ErrNoOutput = errors.New("host: result prefix not found in output")

// Entry is one element of a harness result line.
type Entry struct {
	IsError bool            `json:"is_error"`
	Value   json.RawMessage `json:"value,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Result converts the entry back into a phase result. A missing value
// decodes as null.
func (e Entry) Result() rop.Result[canon.Value] {
	if e.IsError {
		return rop.Fail[canon.Value](fault.Classify(e.Error))
	}
	if len(e.Value) == 0 {
		return rop.Success(canon.Null())
	}
	v, err := canon.Decode(e.Value)
	if err != nil {
		return rop.Fail[canon.Value](fault.Classify(err))
	}
	return rop.Success(v)
}

// Results converts entries in order.
func Results(entries []Entry) []rop.Result[canon.Value] {
	out := make([]rop.Result[canon.Value], len(entries))
	for i, e := range entries {
		out[i] = e.Result()
	}
	return out
}

// Extract finds the result prefix in a harness's stdout and decodes the
// array after it. Anything printed before the prefix or after the array is
// ignored.
func Extract(stdout []byte) ([]Entry, error) {
	i := bytes.Index(stdout, []byte(lifecycle.OutputPrefix))
	if i < 0 {
		return nil, ErrNoOutput
	}
	dec := json.NewDecoder(bytes.NewReader(stdout[i+len(lifecycle.OutputPrefix):]))

	var entries []Entry
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("host: decode result line: %w", err)
	}
	if entries == nil {
		return nil, fmt.Errorf("host: decode result line: %w", ErrNoOutput)
	}
	return entries, nil
}

// InvocationFailedError is returned when the harness produced no result
// line, which is how a malformed invocation shows up to the host.
type InvocationFailedError struct {
	Path     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *InvocationFailedError) Error() string {
	msg := fmt.Sprintf("host: %s exited with code %d", e.Path, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	}
	return msg
}

func (e *InvocationFailedError) Unwrap() error {
	return e.Err
}

// Runner starts a harness binary once per request.
type Runner struct {
	Path   string
	Args   []string
	Env    []string
	Logger *zap.Logger
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// Invoke runs the harness with req as its last argument and returns its
// entries. The result line decides success, not the exit code.
func (r *Runner) Invoke(ctx context.Context, req lifecycle.Request) ([]Entry, error) {
	raw, err := req.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("host: encode request: %w", err)
	}

	args := append(append([]string{}, r.Args...), string(raw))
	cmd := exec.CommandContext(ctx, r.Path, args...)
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger().Debug("invoking harness",
		zap.String("path", r.Path), zap.Int("inputs", len(req.Inputs)))

	runErr := cmd.Run()
	entries, err := Extract(stdout.Bytes())
	if err == nil {
		if runErr != nil {
			r.logger().Warn("harness exited abnormally after writing results",
				zap.String("path", r.Path), zap.Error(runErr))
		}
		return entries, nil
	}

	failed := &InvocationFailedError{
		Path:     r.Path,
		ExitCode: cmd.ProcessState.ExitCode(),
		Stderr:   stderr.String(),
		Err:      err,
	}
	if runErr != nil {
		failed.Err = errors.Join(runErr, err)
	}
	r.logger().Debug("harness produced no result line",
		zap.String("path", r.Path), zap.Errors("causes", rop.GetErrors(failed.Err)))
	return nil, failed
}

// InvokeAll runs every request on at most lines concurrent harness
// processes. Output is aligned with reqs; one failed invocation fails all.
func (r *Runner) InvokeAll(ctx context.Context, reqs []lifecycle.Request, lines int) ([][]Entry, error) {
	return pool.Run(ctx, reqs, r.Invoke, lines)
}
