package lifecycle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/ib-77/shellcall/pkg/config"
	"github.com/ib-77/shellcall/pkg/rop"
	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/ib-77/shellcall/pkg/rop/solo"
	"go.uber.org/zap"
)

// OutputPrefix marks the result payload on stdout. Hosts search for it rather
// than relying on the exit code.
const OutputPrefix = "shell_call_json_output:"

var ErrNoProcess = errors.New("no process phase configured")

// Phases are the user functions driven by a Coordinator. Before runs once,
// Process once per input, After once at the end whatever happened before.
type Phases[B, O any] struct {
	// Before prepares state shared by every Process call. Nil succeeds with
	// the zero B.
	Before func(ctx context.Context, input canon.Value) (B, error)
	// Process handles one input.
	Process func(ctx context.Context, before B, input canon.Value) (O, error)
	// After tears down. It receives the before outcome, failed when Before
	// failed. Nil is a no-op.
	After func(ctx context.Context, before rop.Result[B], input canon.Value) error
}

type Coordinator[B, O any] struct {
	phases Phases[B, O]
	cfg    config.Config
	logger *zap.Logger
}

// New builds a Coordinator. A nil logger is replaced by zap.NewNop.
func New[B, O any](phases Phases[B, O], cfg config.Config, logger *zap.Logger) *Coordinator[B, O] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator[B, O]{
		phases: phases,
		cfg:    cfg,
		logger: logger,
	}
}

// Run drives the three phases over req and returns one result per input.
// Phase failures are recorded in the results, never returned.
func (c *Coordinator[B, O]) Run(ctx context.Context, req Request) []rop.Result[O] {
	logger := c.logger.With(
		zap.String("invocation", uuid.NewString()),
		zap.Int("inputs", len(req.Inputs)))

	before := solo.Guard(ctx, func(ctx context.Context) (B, error) {
		if c.phases.Before == nil {
			var zero B
			return zero, nil
		}
		return c.phases.Before(ctx, req.Before)
	})
	solo.DoubleTee(ctx, before,
		func(ctx context.Context, _ B) { logger.Debug("before phase done") },
		func(ctx context.Context, err error) {
			logger.Debug("before phase failed, skipping process", zap.Error(err))
		})

	results := solo.Finally(ctx, before,
		func(ctx context.Context, _ B) []rop.Result[O] {
			return c.process(ctx, logger, before, req.Inputs)
		},
		func(ctx context.Context, _ error) []rop.Result[O] {
			return rop.Fill(len(req.Inputs), rop.FailFrom[B, O](before))
		})

	after := solo.Guard(ctx, func(ctx context.Context) (struct{}, error) {
		if c.phases.After == nil {
			return struct{}{}, nil
		}
		return struct{}{}, c.phases.After(ctx, before, req.After)
	})
	solo.DoubleTee(ctx, after,
		func(ctx context.Context, _ struct{}) { logger.Debug("after phase done") },
		func(ctx context.Context, err error) {
			logger.Debug("after phase failed, overriding all results", zap.Error(err))
		})

	return solo.Override(results, after)
}

// process runs items one at a time, in order; item i+1 starts after item i
// has finished.
func (c *Coordinator[B, O]) process(ctx context.Context, logger *zap.Logger,
	before rop.Result[B], inputs []canon.Value) []rop.Result[O] {

	results := make([]rop.Result[O], len(inputs))
	for i, input := range inputs {
		results[i] = solo.Try(ctx, before, func(ctx context.Context, b B) (O, error) {
			if c.phases.Process == nil {
				var zero O
				return zero, ErrNoProcess
			}
			return c.phases.Process(ctx, b, input)
		})
		if results[i].IsFailure() {
			logger.Debug("item failed", zap.Int("index", i), zap.Error(results[i].Err()))
		}
	}
	return results
}

// Encode renders results as the canonical JSON array.
func (c *Coordinator[B, O]) Encode(results []rop.Result[O]) ([]byte, error) {
	if results == nil {
		results = []rop.Result[O]{}
	}
	return canon.Encode(results, canon.WithIndent(c.cfg.Indent))
}

// Emit writes the prefixed payload to w in a single Write call.
func (c *Coordinator[B, O]) Emit(w io.Writer, results []rop.Result[O]) error {
	payload, err := c.Encode(results)
	if err != nil {
		return fmt.Errorf("encode results: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(OutputPrefix) + len(payload) + 1)
	buf.WriteString(OutputPrefix)
	buf.Write(payload)
	buf.WriteByte('\n')

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
