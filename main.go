package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"media-search-bot/internal/catalog"
	"media-search-bot/internal/handlers"
	"media-search-bot/internal/indexer"
	"media-search-bot/internal/logging"
	"media-search-bot/internal/metrics"
	"media-search-bot/internal/middleware"
	"media-search-bot/internal/session"
	"media-search-bot/internal/startup"
	"media-search-bot/internal/transport"
	"media-search-bot/internal/workers"
)

func main() {
	startTime := time.Now()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Initialize metric label sets so dashboards see zeroes, not gaps
	metrics.InitializeMetrics()

	// Initialize catalog
	dbStart := time.Now()
	store, err := catalog.New(context.Background(), config.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize catalog: %v", err)
	}
	defer store.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Connect to the chat platform and resolve our own identity
	client := transport.NewClient(transport.ClientConfig{
		BaseURL:        config.APIBaseURL,
		Token:          config.BotToken,
		HistoryBaseURL: config.HistoryAPIBaseURL,
		HistoryToken:   config.HistoryToken,
	})

	meCtx, meCancel := context.WithTimeout(context.Background(), 30*time.Second)
	me, err := client.Me(meCtx)
	meCancel()
	if err != nil {
		logging.Fatal("Failed to resolve bot identity: %v", err)
	}
	startup.LogBotIdentity(me.Username, me.ID)

	// Wire the core layers. Long-running work (history backfills) runs
	// under appCtx, which stays alive until shutdown.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	ix := indexer.New(store, client, config.BackfillDelay)
	sessions := session.NewManager(store, client, config.PageSize, config.SessionTimeout)
	bot := handlers.New(appCtx, store, ix, sessions, client, me.ID)

	// Periodic stats collection for metrics
	collector := metrics.NewCollector(bot, 30*time.Second)
	if config.MetricsEnabled {
		collector.Start()
	}

	// Webhook receiver with a bounded worker pool
	webhook := transport.NewWebhook(config.WebhookSecret, bot, workers.ForIO(64))

	// Setup router
	router := setupRouter(bot, webhook, config)

	// Apply metrics middleware
	handler := http.Handler(router)
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler = middleware.Logger(loggingConfig)(handler)

	// Create server
	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start graceful shutdown handler
	go handleShutdown(srv, sessions, collector, appCancel, config.MetricsEnabled)

	// Start server
	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		WebhookPath:     config.WebhookPath,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		logging.Fatal("Server error: %v", err)
	}
}

func setupRouter(bot *handlers.Bot, webhook *transport.Webhook, config *startup.Config) *mux.Router {
	r := mux.NewRouter()

	// Inbound updates
	r.Handle(config.WebhookPath, webhook).Methods("POST")

	// Health checks
	r.HandleFunc("/health", bot.HealthCheck).Methods("GET")
	r.HandleFunc("/healthz", bot.HealthCheck).Methods("GET")
	r.HandleFunc("/livez", bot.LivenessCheck).Methods("GET")
	r.HandleFunc("/readyz", bot.ReadinessCheck).Methods("GET")

	if config.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	return r
}

func handleShutdown(srv *http.Server, sessions *session.Manager, collector *metrics.Collector, appCancel context.CancelFunc, metricsEnabled bool) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	appCancel()
	startup.LogShutdownStepComplete("Background work cancelled")

	sessions.Shutdown()
	startup.LogShutdownStepComplete("Session manager stopped")

	if metricsEnabled {
		collector.Stop()
		startup.LogShutdownStepComplete("Metrics collector stopped")
	}

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Server shutdown error: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server stopped")

	startup.LogShutdownComplete()
}
