package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rkeeler/archery-sync/internal/calendar"
	"github.com/rkeeler/archery-sync/internal/config"
	"github.com/rkeeler/archery-sync/internal/fetch"
	"github.com/rkeeler/archery-sync/internal/logging"
	"github.com/rkeeler/archery-sync/internal/metrics"
	"github.com/rkeeler/archery-sync/internal/reconcile"
	"github.com/rkeeler/archery-sync/internal/scrape"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitChanged = 2
)

// exitCode is recorded by runSync and applied in Execute, after runSync's
// deferred cleanup (store close, metrics shutdown) has run.
var exitCode = ExitSuccess

var (
	flagConfig        string
	flagFormat        string
	flagICSDir        string
	flagMetricsListen string
	flagDryRun        bool
	flagVerbose       bool
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archery-sync",
		Short: "Sync the archery events listing into a calendar store",
		Long: `Fetches the archery events listing, enriches each event from its detail
page, and reconciles the result against the target calendar store so that
each event maps to exactly one entry. Re-running with unchanged source data
writes nothing.`,
		RunE:          runSync,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&flagConfig, "config", "archery-sync.yaml", "Path to the YAML config file")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().StringVar(&flagICSDir, "ics-dir", "", "Directory to write ICS files for created/updated entries")
	cmd.Flags().StringVar(&flagMetricsListen, "metrics-listen", "", "Address for /metrics (overrides config)")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Reconcile against an in-memory store instead of the configured one")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func runSync(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if flagVerbose {
		level = logging.ParseLevel("debug")
	}
	logging.Init(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	listen := cfg.Metrics.Listen
	if flagMetricsListen != "" {
		listen = flagMetricsListen
	}
	if listen != "" {
		go func() {
			if err := m.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics listener failed", "addr", listen, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = m.Shutdown(shutdownCtx)
		}()
	}

	store, cleanup, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	fetcher := fetch.New(fetch.Options{
		UserAgent:      cfg.Source.UserAgent,
		Timeout:        cfg.Source.Timeout,
		MaxAttempts:    cfg.Retry.MaxAttempts,
		InitialBackoff: cfg.Retry.InitialBackoff,
	})

	runner := &reconcile.Runner{
		Source:     fetch.NewSource(fetcher, cfg.Source.BaseURLs, cfg.Source.ListingPaths),
		Enricher:   scrape.NewEnricher(fetcher),
		Reconciler: reconcile.New(store, cfg.Location()),
		Metrics:    m,
		ICSDir:     flagICSDir,
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	out := &RunOutput{
		CheckedAt: time.Now().UTC(),
		DryRun:    flagDryRun,
		Summary:   summary,
	}
	if err := WriteOutput(os.Stdout, out, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	exitCode = exitCodeFor(summary)
	return nil
}

// exitCodeFor maps a run summary to the process exit code: 2 when the run
// wrote anything to the store, 0 otherwise.
func exitCodeFor(s reconcile.Summary) int {
	if s.Changed() {
		return ExitChanged
	}
	return ExitSuccess
}

// openStore selects the calendar store backend. Dry runs reconcile against a
// fresh in-memory store, so every source event reports as created.
func openStore(ctx context.Context, cfg *config.Config) (calendar.Store, func(), error) {
	if flagDryRun {
		return calendar.NewMemory(), func() {}, nil
	}
	if cfg.Calendar.PostgresDSN == "" {
		return nil, nil, fmt.Errorf("no calendar store configured: set calendar.postgres_dsn or %s (or use --dry-run)", config.EnvPostgresDSN)
	}
	pg, err := calendar.NewPostgres(ctx, cfg.Calendar.PostgresDSN, cfg.Calendar.Table)
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
	os.Exit(exitCode)
}
