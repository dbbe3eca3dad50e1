package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ironsheep/pixel-ledger/internal/canvas"
	"github.com/ironsheep/pixel-ledger/internal/config"
	"github.com/ironsheep/pixel-ledger/internal/history"
	"github.com/ironsheep/pixel-ledger/internal/journal"
	"github.com/ironsheep/pixel-ledger/internal/ledger"
	"github.com/ironsheep/pixel-ledger/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	// Handle --version and --help before anything touches the config
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "pixel-ledger %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printHelp(stdout)
			return 0
		}
	}

	fs := flag.NewFlagSet("pixel-ledger", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", os.Getenv(config.EnvConfig), "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "pixel-ledger: %v\n", err)
		return 1
	}

	// Logs go to stderr; stdout carries the MCP protocol
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	rest := fs.Args()
	cmd := "serve"
	if len(rest) > 0 {
		cmd, rest = rest[0], rest[1:]
	}

	switch cmd {
	case "serve":
		err = serve(cfg, logger)
	case "log":
		err = logCommand(cfg, rest, stdout)
	case "diff":
		err = diffCommand(cfg, rest, stdout)
	case "export":
		err = exportCommand(cfg, rest, stdout)
	default:
		err = fmt.Errorf("unknown command %q (see --help)", cmd)
	}
	if err != nil {
		fmt.Fprintf(stderr, "pixel-ledger: %v\n", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "pixel-ledger - versioned sparse canvas served over MCP")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: pixel-ledger [--config file] [command] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  serve                                 Serve MCP over stdin/stdout (default)")
	fmt.Fprintln(w, "  log <journal>                         List the commands in a journal")
	fmt.Fprintln(w, "  diff <journal> <version>              Print the patch from version to latest")
	fmt.Fprintln(w, "  export <journal> <out.png> [version] [scale]")
	fmt.Fprintln(w, "                                        Write the canvas as a PNG")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config <file>  YAML configuration")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s       Config file path\n", config.EnvConfig)
	fmt.Fprintf(w, "  %s    debug, info, warn or error\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s      Journal file for serve\n", config.EnvJournal)
	fmt.Fprintf(w, "  %s      full or null\n", config.EnvHistory)
	fmt.Fprintf(w, "  %s  Commands between snapshots\n", config.EnvSnapshotInterval)
}

// ledgerOptions maps the config onto ledger options.
func ledgerOptions(cfg *config.Config, logger *slog.Logger) []ledger.Option {
	var opts []ledger.Option
	if cfg.History == config.HistoryNull {
		opts = append(opts, ledger.WithNullLog())
	} else {
		opts = append(opts, ledger.WithSnapshotInterval(cfg.SnapshotInterval))
	}
	if logger != nil && logger.Enabled(context.Background(), slog.LevelDebug) {
		opts = append(opts, ledger.WithObserver(func(cmd canvas.Command, v history.Version) {
			logger.Debug("applied", "kind", cmd.Kind(), "points", cmd.PointCount(), "version", v)
		}))
	}
	return opts
}

// openLedger replays the journal at path into a new ledger.
func openLedger(path string, opts ...ledger.Option) (*ledger.VersionedImage, journal.Stats, error) {
	v := ledger.New(opts...)
	stats, err := journal.Replay(path, v)
	if err != nil {
		return nil, stats, fmt.Errorf("replay %s: %w", path, err)
	}
	return v, stats, nil
}

func serve(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting pixel-ledger", "version", Version, "commit", GitCommit, "history", cfg.History)

	var (
		v   *ledger.VersionedImage
		w   *journal.Writer
		err error
	)
	if cfg.Journal == "" {
		v = ledger.New(ledgerOptions(cfg, logger)...)
	} else {
		var stats journal.Stats
		v, stats, err = openLedger(cfg.Journal, ledgerOptions(cfg, logger)...)
		if err != nil {
			return err
		}
		logger.Info("journal replayed", "path", cfg.Journal, "records", stats.Records, "version", v.Version())
		if w, err = journal.Open(cfg.Journal); err != nil {
			return err
		}
		defer w.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(v, server.Options{
		Version: Version,
		Logger:  logger,
		Journal: w,
		Render:  cfg.Render,
	})
	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
