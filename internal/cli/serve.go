package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/oxbridge-lms/internal/catalog"
	"github.com/iliyamo/oxbridge-lms/internal/config"
	"github.com/iliyamo/oxbridge-lms/internal/delay"
	"github.com/iliyamo/oxbridge-lms/internal/handler"
	"github.com/iliyamo/oxbridge-lms/internal/logging"
	"github.com/iliyamo/oxbridge-lms/internal/materials"
	"github.com/iliyamo/oxbridge-lms/internal/queue"
	"github.com/iliyamo/oxbridge-lms/internal/router"
	"github.com/iliyamo/oxbridge-lms/internal/service"
	"github.com/iliyamo/oxbridge-lms/internal/study"
)

type serveOptions struct {
	Port    string
	Consume bool
}

// NewServeCommand runs the HTTP server until SIGINT or SIGTERM.
func NewServeCommand(root *RootOptions) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Port, "port", "", "listen port (overrides APP_PORT)")
	cmd.Flags().BoolVar(&opts.Consume, "consume", false, "also run the audit event consumer in-process")
	return cmd
}

func newLogger(cfg config.Config, root *RootOptions) logging.Logger {
	level := cfg.LogLevel
	if root.Verbose {
		level = "debug"
	}
	return logging.New(os.Stderr, cfg.Env, level)
}

func runServe(parent context.Context, root *RootOptions, opts *serveOptions) error {
	cfg := config.Load()
	if opts.Port != "" {
		cfg.Port = opts.Port
	}
	log := newLogger(cfg, root)

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return WrapExitError(ExitFailure, "open store", err)
	}
	defer b.Close()

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load catalog", err)
	}
	res, err := materials.New(ctx, cfg)
	if err != nil {
		return WrapExitError(ExitFailure, "materials resolver", err)
	}
	if cfg.MaterialsS3Bucket != "" {
		res = materials.WithCache(res, b.Redis, config.LoadCacheConfig(), cfg.MaterialsURLTTL)
	}

	sched := delay.NewScheduler()
	d := &handler.Deps{
		Cfg:       cfg,
		Store:     b.Store,
		Catalog:   cat,
		Materials: res,
		Scheduler: sched,
		IDs:       study.NewIDGenerator(),
		Events:    service.New(cfg.EventsEnabled, cfg.RabbitURL, log),
		Log:       log,
	}
	e, err := router.New(d, router.Options{
		Redis:     b.Redis,
		RateLimit: config.LoadRateLimitConfig(),
	})
	if err != nil {
		return WrapExitError(ExitFailure, "build router", err)
	}

	if opts.Consume && cfg.EventsEnabled {
		c := &queue.Consumer{URL: cfg.RabbitURL, Dir: cfg.LogDir, Log: log}
		go func() { _ = c.Run(ctx) }()
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()
	log.Info(ctx, "listening", "addr", addr, "env", cfg.Env, "store", cfg.StoreDriver)

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "server", err)
		}
		return nil
	}

	log.Info(ctx, "shutting down", "pending_redirects", sched.Pending())
	sched.CancelAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "shutdown", err)
	}
	log.Info(shutdownCtx, "server stopped")
	return nil
}
