package main

import (
	"fmt"
	"os"

	"github.com/ib-77/shellcall/pkg/rop"
	"github.com/ib-77/shellcall/pkg/rop/canon"
	"github.com/ib-77/shellcall/pkg/rop/host"
	"github.com/ib-77/shellcall/pkg/rop/lifecycle"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(opts *options) *cobra.Command {
	var harnessArgs []string

	cmd := &cobra.Command{
		Use:   "run BINARY REQUEST.json...",
		Short: "Invoke a harness once per request file",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			binary, files := args[0], args[1:]

			reqs := make([]lifecycle.Request, len(files))
			for i, path := range files {
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read request: %w", err)
				}
				req, err := lifecycle.DecodeRequest(raw)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				reqs[i] = req
			}

			runner := &host.Runner{
				Path:   binary,
				Args:   harnessArgs,
				Logger: opts.logger,
			}

			opts.logger.Debug("dispatching requests",
				zap.String("binary", binary),
				zap.Int("requests", len(reqs)),
				zap.Int("workers", opts.cfg.Workers))

			all, err := runner.InvokeAll(cmd.Context(), reqs, opts.cfg.Workers)
			if err != nil {
				return err
			}

			out := make(map[string][]rop.Result[canon.Value], len(files))
			for i, path := range files {
				results := host.Results(all[i])
				if failed := rop.Errors(results); len(failed) > 0 {
					opts.logger.Debug("request has failed items",
						zap.String("file", path), zap.Errors("errors", failed))
				}
				out[path] = results
			}

			payload, err := canon.Encode(out, canon.WithIndent(opts.cfg.Indent))
			if err != nil {
				return fmt.Errorf("encode results: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(append(payload, '\n'))
			return err
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "concurrent harness processes (default from config)")
	cmd.Flags().StringArrayVar(&harnessArgs, "harness-arg", nil, "argument passed to the harness before the request")
	return cmd
}
