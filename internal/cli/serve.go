package cli

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/api"
	"github.com/eshaffer321/anvil/internal/infrastructure/config"
	"github.com/eshaffer321/anvil/internal/infrastructure/logging"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

var errNoHistory = errors.New("no history database configured (storage.database_path)")

type serveCmd struct {
	app  *App
	port int
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the run history over HTTP" }
func (*serveCmd) Usage() string {
	return `anvil serve [-port <port>]

  Starts a read-only JSON API over the recorded runs. Stops on SIGINT or
  SIGTERM.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.port, "port", 0, "Port to listen on (default from config)")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a := c.app
	cfg, err := a.loadConfig()
	if err != nil {
		return a.fail(err)
	}
	if cfg.Storage.DatabasePath == "" {
		return a.usage(errNoHistory)
	}
	if c.port != 0 {
		cfg.API.Port = c.port
	}
	if err := RunServe(ctx, cfg, logging.NewLoggerWithSystem(a.loggingConfig(cfg), "api")); err != nil {
		return a.fail(err)
	}
	return subcommands.ExitSuccess
}

// RunServe runs the API server until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func RunServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	server := api.NewServer(api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
	}, store, logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		errc <- server.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
	}
	if err := <-errc; err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
