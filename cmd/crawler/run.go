package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/user/playlist-scraper/internal/adapter/chromedp_crawler"
	deliveryhttp "github.com/user/playlist-scraper/internal/delivery/http"
	"github.com/user/playlist-scraper/internal/delivery/http/handler"
	"github.com/user/playlist-scraper/internal/delivery/http/router"
	"github.com/user/playlist-scraper/internal/proxy"
	"github.com/user/playlist-scraper/internal/usecase"
	"github.com/user/playlist-scraper/pkg/config"
	"github.com/user/playlist-scraper/pkg/logger"
	"github.com/user/playlist-scraper/pkg/metrics"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Search playlists and collect contact emails",
		Long: `Run searches playlists matching --query, visits up to --max-playlists of
them and stores one record per playlist whose description contains an e-mail
address. With --debug every visited playlist is stored.

Records go to PostgreSQL when --postgres-url is set, otherwise to the SQLite
dataset file. The run summary is printed as JSON on stdout.

Examples:
  # Collect up to 20 playlists for a query
  crawler run -q "lofi beats" -n 20

  # Share the queue through Redis and expose the status API
  crawler run -q "indie" --redis-addr localhost:6379 --http-addr :8080`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	// Crawl input
	cmd.Flags().StringP("query", "q", "", "Search term for playlists (required)")
	cmd.Flags().IntP("max-playlists", "n", 50, "Maximum number of playlists to visit")
	cmd.Flags().Bool("include-private", false, "Include private playlists (accepted for compatibility, has no effect)")
	cmd.Flags().String("email-regex", "", "Regular expression used to find e-mail addresses")
	cmd.Flags().Bool("debug", false, "Store every visited playlist, with or without e-mail")
	cmd.Flags().StringSlice("proxy", nil, "Proxy URL for the browser, repeatable")

	// Runtime
	cmd.Flags().String("base-url", "https://open.spotify.com", "Base URL of the web player")
	cmd.Flags().Int("concurrency", 4, "Number of pages processed in parallel")
	cmd.Flags().Bool("headless", true, "Run the browser headless")
	cmd.Flags().Int("max-attempts", 3, "Attempts per request before it is reported as failed")
	cmd.Flags().Float64("requests-per-second", 0, "Page open rate limit, 0 disables it")
	cmd.Flags().Duration("request-timeout", 120*time.Second, "Time limit for one attempt at a page")
	cmd.Flags().Duration("wait-timeout", 30*time.Second, "Time to wait for a page element to appear")
	cmd.Flags().Duration("settle-timeout", 10*time.Second, "Time to wait for a navigation to settle after a click")

	// Backends
	cmd.Flags().String("redis-addr", "", "Redis address for the request queue (default in-memory)")
	cmd.Flags().String("postgres-url", "", "PostgreSQL connection string for results")
	cmd.Flags().String("dataset", "./storage/dataset.db", "SQLite dataset file used when no PostgreSQL is set")
	cmd.Flags().String("http-addr", "", "Serve status and metrics on this address, e.g. :8080")

	return cmd
}

// runCrawlCmd executes the run command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	log, err := logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	b := newBackends()
	defer b.Close()
	if err := b.openSinks(ctx, cfg, log); err != nil {
		return err
	}
	if err := b.openQueue(ctx, cfg, runID, log); err != nil {
		return err
	}

	browser := chromedp_crawler.NewChromedpBrowser(
		proxy.NewManager(cfg.ProxyURLs, nil),
		chromedp_crawler.Options{Headless: cfg.Headless, NavigationTimeout: cfg.WaitTimeout},
		log,
	)
	defer browser.Close()

	crawler := usecase.NewCrawler(crawlOptions(cfg, runID), usecase.Dependencies{
		Browser:     browser,
		QueueRepo:   b.queueRepo,
		VisitedRepo: b.visitedRepo,
		ResultRepo:  b.resultRepo,
		FailedRepo:  b.failedRepo,
		Metrics:     m,
		Logger:      log,
	})

	if cfg.HTTPAddr != "" {
		h := handler.NewHandler(runID, crawler, b.resultRepo, b.failedRepo, b.pingers, log)
		server := deliveryhttp.NewServer(cfg.HTTPAddr, router.New(h, m, reg, log), log)
		server.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				log.Error("Server forced to shutdown", zap.Error(err))
			}
		}()
	}

	summary, err := crawler.Run(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			return fmt.Errorf("crawl failed: %w", err)
		}
		log.Warn("Crawl interrupted, keeping partial results")
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func crawlOptions(cfg *config.Config, runID string) usecase.Options {
	// Validated by config.Load.
	pattern, _ := cfg.EmailPattern()
	return usecase.Options{
		RunID:             runID,
		SearchQuery:       cfg.SearchQuery,
		BaseURL:           cfg.BaseURL,
		MaxPlaylists:      cfg.MaxPlaylists,
		EmailPattern:      pattern,
		DebugMode:         cfg.DebugMode,
		Concurrency:       cfg.Concurrency,
		MaxAttempts:       cfg.MaxAttempts,
		RequestTimeout:    cfg.RequestTimeout,
		WaitTimeout:       cfg.WaitTimeout,
		SettleTimeout:     cfg.SettleTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}
}
