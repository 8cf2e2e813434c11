package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/lysyi3m/trend-comb/app/api"
	"github.com/lysyi3m/trend-comb/app/cache"
	"github.com/lysyi3m/trend-comb/app/cfg"
	"github.com/lysyi3m/trend-comb/app/database"
	"github.com/lysyi3m/trend-comb/app/events"
	"github.com/lysyi3m/trend-comb/app/insight"
	"github.com/lysyi3m/trend-comb/app/sentiment"
	"github.com/lysyi3m/trend-comb/app/source"
	"github.com/lysyi3m/trend-comb/app/tasks"
	"github.com/lysyi3m/trend-comb/app/telemetry"
	"github.com/lysyi3m/trend-comb/app/trends"
	"github.com/lysyi3m/trend-comb/app/watch"
)

const serviceName = "trend-comb"

func main() {
	c, err := cfg.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if c == nil {
		return
	}

	if c.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := run(c); err != nil {
		slog.Error("Server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cfg.Cfg) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting Trend Comb", "version", c.Version, "mock_data", c.UseMockData, "insight_provider", c.InsightProvider)

	shutdownTracing, err := telemetry.Setup(ctx, c.OTLPEndpoint, serviceName, c.Version)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("Failed to flush traces", "error", err)
		}
	}()

	classifier, err := newClassifier(c.LexiconFile)
	if err != nil {
		return err
	}

	sources, err := source.FromConfig(c)
	if err != nil {
		return fmt.Errorf("failed to configure sources: %w", err)
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources configured")
	}

	synthesizer, err := newSynthesizer(c, classifier)
	if err != nil {
		return err
	}

	db, err := database.NewConnection(c.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		return err
	}
	slog.Info("Database ready", "path", c.DatabasePath, "schema_version", version, "dirty", dirty)

	postRepo := database.NewPostRepository(db)
	watchRepo := database.NewWatchRepository(db)

	configCache := watch.NewConfigCache(c.WatchesDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load watches: %w", err)
	}
	slog.Info("Watches loaded", "dir", c.WatchesDir, "count", configCache.GetConfigCount())

	// Watch ingestion only needs fetch and merge.
	collector := trends.New(sources, synthesizer, trends.WithFetchTimeout(c.FetchTimeout))

	scheduler := tasks.NewScheduler(configCache, watchRepo, postRepo, collector, classifier, c.SchedulerInterval, c.WorkerCount)
	scheduler.Start()
	defer scheduler.Stop()

	opts := []trends.Option{
		trends.WithFetchTimeout(c.FetchTimeout),
		trends.WithSynthesisTimeout(c.SynthesisTimeout),
		trends.WithArchiver(tasks.NewArchiver(scheduler, classifier, postRepo)),
	}

	var handlerOpts []api.HandlerOption

	if c.RedisAddr != "" {
		insightCache, err := cache.NewCache(ctx, c.RedisAddr, c.CacheTTL)
		if err != nil {
			slog.Warn("Insight cache disabled", "addr", c.RedisAddr, "error", err)
		} else {
			defer insightCache.Close()
			opts = append(opts, trends.WithCache(insightCache))
			handlerOpts = append(handlerOpts, api.WithCacheHealth(insightCache))
		}
	}

	if len(c.KafkaBrokers) > 0 {
		publisher, err := events.NewPublisher(c.KafkaBrokers, c.KafkaTopic)
		if err != nil {
			return fmt.Errorf("failed to create insight publisher: %w", err)
		}
		defer publisher.Close()
		opts = append(opts, trends.WithPublisher(publisher))
		slog.Info("Publishing insight events", "brokers", c.KafkaBrokers, "topic", c.KafkaTopic)
	}

	orchestrator := trends.New(sources, synthesizer, opts...)

	if !c.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := api.NewHandler(orchestrator, classifier, postRepo, watchRepo, configCache, c.Version, handlerOpts...)
	router := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + c.Port,
		Handler:      otelhttp.NewHandler(router, "http.server"),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: writeTimeout(c),
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", c.Port, "sources", orchestrator.Sources())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP server shutdown error", "error", err)
	}

	slog.Info("Trend Comb shutdown complete")
	return nil
}

func newClassifier(lexiconFile string) (*sentiment.Classifier, error) {
	if lexiconFile == "" {
		return sentiment.NewClassifier(sentiment.DefaultLexicon()), nil
	}

	lexicon, err := sentiment.LoadLexicon(lexiconFile)
	if err != nil {
		return nil, err
	}
	slog.Info("Sentiment lexicon loaded", "file", lexiconFile, "positive", len(lexicon.Positive), "negative", len(lexicon.Negative))

	return sentiment.NewClassifier(lexicon), nil
}

func newSynthesizer(c *cfg.Cfg, classifier *sentiment.Classifier) (insight.Synthesizer, error) {
	if c.UseMockData || c.InsightProvider == cfg.InsightProviderLexical {
		return insight.NewLexicalSynthesizer(classifier), nil
	}

	if c.ZhipuAPIKey == "" {
		slog.Warn("Zhipu API key not configured, trend analysis will report the provider as unavailable")
	}

	httpClient, err := source.NewHTTPClient(source.TransportOptions{UserAgent: c.UserAgent})
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM HTTP client: %w", err)
	}

	return insight.NewZhipuSynthesizer(c.ZhipuAPIKey,
		insight.WithHTTPClient(httpClient),
		insight.WithBaseURL(c.LLMBaseURL),
		insight.WithModel(c.LLMModel)), nil
}

// writeTimeout leaves room for a full fetch and synthesis round.
func writeTimeout(c *cfg.Cfg) time.Duration {
	return max(90*time.Second, c.FetchTimeout+c.SynthesisTimeout+30*time.Second)
}
