package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
)

// NewConsumeCommand drains the audit event queue into the study log.
func NewConsumeCommand(root *RootOptions) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "consume",
		Short: "Append audit events from RabbitMQ to the study log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if dir != "" {
				cfg.LogDir = dir
			}
			log := newLogger(cfg, root)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			c := &queue.Consumer{URL: cfg.RabbitURL, Dir: cfg.LogDir, Log: log}
			log.Info(ctx, "consuming", "queue", queue.QueueName, "dir", cfg.LogDir)
			if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return WrapExitError(ExitFailure, "consume", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "log directory (overrides LOG_DIR)")
	return cmd
}
