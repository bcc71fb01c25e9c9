package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/bhardwajRahul/AutoHedge/internal/adapters/ai"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/config"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/errors/noop"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/errors/sentry"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/gateway"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/kafka"
	"github.com/bhardwajRahul/AutoHedge/internal/adapters/marketdata"
	"github.com/bhardwajRahul/AutoHedge/internal/agents"
	"github.com/bhardwajRahul/AutoHedge/internal/domain/trade"
	"github.com/bhardwajRahul/AutoHedge/internal/events"
	"github.com/bhardwajRahul/AutoHedge/internal/fund"
	"github.com/bhardwajRahul/AutoHedge/internal/metrics"
	"github.com/bhardwajRahul/AutoHedge/internal/repository/sqlite"
	"github.com/bhardwajRahul/AutoHedge/internal/workspace"
	"github.com/bhardwajRahul/AutoHedge/pkg/errors"
	"github.com/bhardwajRahul/AutoHedge/pkg/logger"
)

func main() {
	task := flag.String("task", "Generate a trading decision for the given portfolio", "trading objective for the run")
	symbols := flag.String("symbols", "", "comma-separated symbols to evaluate (required)")
	allocation := flag.Float64("allocation", 50000, "capital allocation for the run, in account currency")
	printJSON := flag.Bool("json", false, "print the full run result as JSON to stdout")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Env)

	// Initialize error tracker
	errorTracker := initErrorTracker(cfg, log)
	logger.SetErrorTracker(errorTracker)
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = errorTracker.Flush(flushCtx)
	}()

	metrics.Init()
	stopMetrics := startMetricsServer(cfg, log)
	defer stopMetrics()

	portfolio := splitSymbols(*symbols)
	if len(portfolio) == 0 {
		fmt.Fprintln(os.Stderr, "usage: autohedge -symbols NVDA,AAPL [-task ...] [-allocation ...]")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	result, err := run(ctx, cfg, *task, portfolio, *allocation, log)
	if err != nil {
		log.Errorf("Run failed: %v", err)
		os.Exit(1)
	}

	printSummary(result, *printJSON, log)
}

func run(ctx context.Context, cfg *config.Config, objective string, symbols []string, allocation float64, log *logger.Logger) (*trade.RunResult, error) {
	capability, err := ai.NewCapability(cfg.AI)
	if err != nil {
		return nil, errors.Wrap(err, "init reasoning capability")
	}

	provider := marketdata.NewBinanceProvider(cfg.MarketData)

	gw, err := gateway.New(cfg.Gateway)
	if err != nil {
		return nil, errors.Wrap(err, "init execution gateway")
	}

	ws, err := workspace.New(cfg.Pipeline.WorkspaceDir)
	if err != nil {
		return nil, errors.Wrap(err, "init workspace")
	}

	journal, err := sqlite.Open(cfg.Pipeline.JournalPath)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	defer journal.Close()

	publisher, closePublisher := initPublisher(cfg, log)
	defer closePublisher()

	rt := agents.NewRuntime(capability, ws, cfg.Pipeline.StageRetryLimit, cfg.AI.Temperature, cfg.AI.MaxTokens)
	pipeline := fund.NewPipeline(rt, provider, gw, cfg.Pipeline.StageRetryLimit)
	f := fund.New(pipeline, journal, ws, publisher, fund.Config{
		MaxConcurrentSymbols: cfg.Pipeline.MaxConcurrentSymbols,
		RunTimeout:           cfg.Pipeline.RunTimeout,
	})

	task := trade.NewTask(objective, decimal.NewFromFloat(allocation))
	log.Infof("Allocating %s across %d symbols", humanize.CommafWithDigits(allocation, 2), len(symbols))

	return f.Run(ctx, task, symbols)
}

// initErrorTracker initializes error tracking (Sentry or no-op)
func initErrorTracker(cfg *config.Config, log *logger.Logger) errors.Tracker {
	if !cfg.ErrorTracking.Enabled || cfg.ErrorTracking.SentryDSN == "" {
		log.Info("Error tracking disabled")
		return noop.New()
	}

	tracker, err := sentry.New(cfg.ErrorTracking.SentryDSN, cfg.ErrorTracking.Environment)
	if err != nil {
		log.Warnf("Failed to initialize Sentry: %v", err)
		return noop.New()
	}

	log.Info("Error tracking initialized (Sentry)")
	return tracker
}

// initPublisher initializes run event publishing (Kafka or no-op)
func initPublisher(cfg *config.Config, log *logger.Logger) (events.Publisher, func()) {
	if !cfg.Kafka.Enabled || len(cfg.Kafka.Brokers) == 0 {
		log.Info("Event publishing disabled")
		return events.NopPublisher{}, func() {}
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{Brokers: cfg.Kafka.Brokers})
	log.Infof("Event publishing initialized (Kafka, topic %s)", cfg.Kafka.Topic)
	return events.NewKafkaPublisher(producer, cfg.Kafka.Topic), func() {
		if err := producer.Close(); err != nil {
			log.Warnf("Failed to close Kafka producer: %v", err)
		}
	}
}

// startMetricsServer exposes Prometheus metrics when an address is set
func startMetricsServer(cfg *config.Config, log *logger.Logger) func() {
	if cfg.App.MetricsAddr == "" {
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	server := &http.Server{Addr: cfg.App.MetricsAddr, Handler: mux}

	go func() {
		log.Infof("Metrics listening on %s", cfg.App.MetricsAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warnf("Metrics server stopped: %v", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}
}

func printSummary(result *trade.RunResult, printJSON bool, log *logger.Logger) {
	for _, symbol := range result.Symbols() {
		record := result.Records[symbol]
		line := fmt.Sprintf("%-8s %s", symbol, record.Status)
		if record.Execution != nil && record.Execution.Order != nil && !record.Execution.NoTrade {
			order := record.Execution.Order
			line += fmt.Sprintf("  %s %s qty=%s", order.Side, order.Type, order.Quantity.String())
		}
		if record.FailureReason != "" {
			line += "  " + record.FailureReason
		}
		fmt.Println(line)
	}
	log.Infof("Run %s finished: %d/%d completed in %s",
		result.RunID, result.Completed(), len(result.Records),
		result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))

	if printJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			log.Errorf("Failed to render result: %v", err)
			return
		}
		fmt.Println(string(out))
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
