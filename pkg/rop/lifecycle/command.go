package lifecycle

import (
	"context"
	"fmt"
	"os"

	"github.com/ib-77/shellcall/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Command wraps the coordinator as a cobra command taking the request JSON as
// its only argument. A malformed request fails the command before anything
// is written to stdout.
func (c *Coordinator[B, O]) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "harness REQUEST_JSON",
		Short: "Run before/process/after over one invocation request",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 1 {
				return &InvocationError{Err: ErrArgCount, Detail: fmt.Sprintf("got %d", len(args))}
			}
			return nil
		},
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := ParseRequest(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			results := c.Run(ctx, req)
			return c.Emit(cmd.OutOrStdout(), results)
		},
	}
}

// Main runs a harness process: configuration from the environment, the
// request from os.Args, the result line on stdout. It exits 0 once the line
// is written and 1 on a malformed invocation.
func Main[B, O any](phases Phases[B, O]) {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := cfg.Logger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := New(phases, cfg, logger).Command()
	cmd.SetArgs(os.Args[1:])

	if err := cmd.Execute(); err != nil {
		logger.Error("harness failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}

	_ = logger.Sync()
	os.Exit(0)
}
