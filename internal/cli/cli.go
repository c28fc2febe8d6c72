// Package cli wires configuration, sink selection, and the monitor loop into
// the matchmirror command.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rbenali/matchmirror/internal/alert"
	"github.com/rbenali/matchmirror/internal/config"
	"github.com/rbenali/matchmirror/internal/fetch"
	"github.com/rbenali/matchmirror/internal/health"
	"github.com/rbenali/matchmirror/internal/logger"
	"github.com/rbenali/matchmirror/internal/monitor"
	"github.com/rbenali/matchmirror/internal/scraper"
	"github.com/rbenali/matchmirror/internal/sink"
	"github.com/spf13/cobra"
)

var (
	flagOnce    bool
	flagDryRun  bool
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchmirror",
		Short: "Mirror today's matches into a pluggable sink",
		Long: `Polls the upstream listing page, harvests every match detail page, and
publishes the aggregated snapshot into the configured sink whenever the
content changes or the calendar day rolls over.`,
		RunE: run,
	}

	cmd.Flags().BoolVar(&flagOnce, "once", false, "Run a single harvest cycle and exit")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print what would be published without touching any sink")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stdout))
	}

	cfg := config.Load()

	store, err := buildSink(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("initializing sink: %w", err)
	}

	sc := scraper.New(fetch.New())
	m := monitor.New(sc, store, buildNotifier(cfg), cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagOnce {
		return m.RunOnce(ctx)
	}

	go func() {
		if err := health.Serve(cfg.HealthPort); err != nil {
			logger.Warn("health endpoint stopped", logger.Fields{"error": err.Error()})
		}
	}()

	m.Run(ctx)
	return nil
}

// buildSink selects the sink variant from configuration. Dry runs always get
// the printing sink regardless of SINK.
func buildSink(ctx context.Context, cfg *config.Config) (sink.Sink, error) {
	if flagDryRun {
		return sink.NewDryRunSink(os.Stdout), nil
	}

	switch cfg.SinkKind {
	case config.SinkFile:
		return sink.NewFileSink(cfg.SnapshotPath)
	case config.SinkGist:
		return sink.NewGistSink(cfg.GistID, cfg.GithubToken)
	case config.SinkPostgres:
		return sink.NewPostgresSink(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown sink kind: %s", cfg.SinkKind)
	}
}

// buildNotifier returns the Telegram notifier when credentials are present,
// or a no-op so the pipeline runs without an alert channel.
func buildNotifier(cfg *config.Config) alert.Notifier {
	if flagDryRun || cfg.TelegramToken == "" || cfg.TelegramChatID == "" {
		if !flagDryRun {
			logger.Warn("telegram credentials missing, alerts disabled", nil)
		}
		return alert.Nop{}
	}

	n, err := alert.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		logger.Warn("telegram notifier unavailable, alerts disabled", logger.Fields{"error": err.Error()})
		return alert.Nop{}
	}
	return n
}
