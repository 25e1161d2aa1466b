// Package cli implements the anvil command line. Each report is a
// subcommand; with no subcommand anvil audits every configured account.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/google/subcommands"

	"github.com/eshaffer321/anvil/internal/adapters/journal"
	"github.com/eshaffer321/anvil/internal/application/service"
	"github.com/eshaffer321/anvil/internal/infrastructure/config"
	"github.com/eshaffer321/anvil/internal/infrastructure/logging"
	"github.com/eshaffer321/anvil/internal/infrastructure/storage"
)

// Name is the program name used in usage text and completion.
const Name = "anvil"

// DefaultCommand runs when no subcommand is given.
const DefaultCommand = "audit"

// App holds the global flags and the streams commands write to.
type App struct {
	ConfigPath  string
	JournalFile string
	Verbose     bool
	Quiet       bool
	Output      string

	Stdout io.Writer
	Stderr io.Writer
}

// NewApp returns an App writing to the process streams.
func NewApp() *App {
	return &App{Stdout: os.Stdout, Stderr: os.Stderr}
}

// SetFlags registers the global flags on f.
func (a *App) SetFlags(f *flag.FlagSet) {
	f.StringVar(&a.ConfigPath, "config", "", "Path to the config file (default "+config.DefaultPath+", then environment)")
	f.StringVar(&a.JournalFile, "f", "", "Journal file, overrides the configured one")
	f.BoolVar(&a.Verbose, "v", false, "Verbose output")
	f.BoolVar(&a.Quiet, "q", false, "Only print warnings and errors")
	f.StringVar(&a.Output, "o", "", "Write the report to this file instead of stdout")
}

// Register the subcommands.
func (a *App) Register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&reconcileCmd{app: a}, "reports")
	c.Register(&monthlyCmd{app: a}, "reports")
	c.Register(&auditCmd{app: a}, "reports")

	c.Register(&runsCmd{app: a}, "history")
	c.Register(&serveCmd{app: a}, "history")

	c.Register(&exportCmd{app: a}, "journal")
}

// Run parses args (without the program name) and executes the selected
// subcommand.
func Run(ctx context.Context, a *App, args []string) subcommands.ExitStatus {
	fs := flag.NewFlagSet(Name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	a.SetFlags(fs)

	commander := subcommands.NewCommander(fs, Name)
	commander.Output = a.Stdout
	commander.Error = a.Stderr
	a.Register(commander)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return subcommands.ExitSuccess
		}
		return subcommands.ExitUsageError
	}
	if fs.NArg() == 0 {
		if err := fs.Parse(append(slices.Clone(args), DefaultCommand)); err != nil {
			return subcommands.ExitUsageError
		}
	}
	return commander.Execute(ctx)
}

// loadConfig reads the config named by -config, or anvil.yaml with an
// environment fallback, then applies the global overrides.
func (a *App) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	if a.ConfigPath != "" {
		var err error
		if cfg, err = config.Load(a.ConfigPath); err != nil {
			return nil, err
		}
	} else {
		cfg = config.LoadOrEnv()
	}
	if a.JournalFile != "" {
		cfg.Journal.File = a.JournalFile
	}
	if err := cfg.ResolvePaths(); err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	return cfg, nil
}

func (a *App) loggingConfig(cfg *config.Config) config.LoggingConfig {
	lc := cfg.Observability.Logging
	switch {
	case a.Verbose:
		lc.Level = "debug"
	case a.Quiet:
		lc.Level = "warn"
	}
	return lc
}

func (a *App) logger(cfg *config.Config, system string) *slog.Logger {
	return logging.NewLoggerTo(a.Stderr, a.loggingConfig(cfg)).With("system", system)
}

func (a *App) journalReader(cfg *config.Config, logger *slog.Logger) (journal.Reader, error) {
	return journal.New(journal.Options{
		Format: cfg.Journal.Format,
		File:   cfg.Journal.File,
		Binary: cfg.Journal.LedgerBinary,
		Search: cfg.Journal.Search,
		Logger: logger,
	})
}

// openStore opens the run history. Dry runs do not record anything, so
// they get a nil repository.
func openStore(cfg *config.Config, dryRun bool) (storage.Repository, func(), error) {
	if dryRun || cfg.Storage.DatabasePath == "" {
		return nil, func() {}, nil
	}
	store, err := storage.NewStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open history: %w", err)
	}
	return store, func() { _ = store.Close() }, nil
}

// output returns the writer for the report: the -o file or stdout.
func (a *App) output() (io.Writer, func() error, error) {
	if a.Output == "" {
		return a.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(a.Output)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// newService wires a ReconcileService from the config.
func (a *App) newService(cfg *config.Config, dryRun bool) (*service.ReconcileService, func(), error) {
	logger := a.logger(cfg, "reconcile")
	reader, err := a.journalReader(cfg, a.logger(cfg, "journal"))
	if err != nil {
		return nil, nil, err
	}
	store, closeStore, err := openStore(cfg, dryRun)
	if err != nil {
		return nil, nil, err
	}
	return service.NewReconcileService(reader, store, logger), closeStore, nil
}

func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	return subcommands.ExitFailure
}

func (a *App) usage(err error) subcommands.ExitStatus {
	fmt.Fprintf(a.Stderr, "Error: %v\n", err)
	return subcommands.ExitUsageError
}
