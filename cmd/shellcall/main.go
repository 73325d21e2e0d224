package main

import (
	"fmt"
	"os"

	"github.com/ib-77/shellcall/pkg/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type options struct {
	configPath string
	debug      bool
	workers    int

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "shellcall",
		Short: "Drive before/process/after harness binaries",
		Long: `shellcall runs harness binaries built on the lifecycle package.

Each request file holds one invocation request ({"before", "inputs", "after"}).
The harness is started once per request, at most --workers at a time, and the
collected results are printed as one canonical JSON object keyed by file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.debug {
				cfg.Debug = true
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = opts.workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			opts.cfg = cfg
			opts.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv(config.EnvConfig), "YAML config file")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newRunCmd(opts))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
