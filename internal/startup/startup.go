package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"media-search-bot/internal/logging"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// Config holds all application configuration
type Config struct {
	BotToken          string
	APIBaseURL        string
	HistoryAPIBaseURL string
	HistoryToken      string
	WebhookSecret     string
	WebhookPath       string
	DatabaseDir       string
	Port              string
	MetricsEnabled    bool
	LogHealthChecks   bool
	PageSize          int
	SessionTimeout    time.Duration
	BackfillDelay     time.Duration

	// Derived paths
	DatabasePath string
}

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	botToken := os.Getenv("BOT_TOKEN")
	apiBaseURL := getEnv("API_BASE_URL", "https://api.telegram.org")
	historyAPIBaseURL := getEnv("HISTORY_API_BASE_URL", "")
	historyToken := os.Getenv("HISTORY_TOKEN")
	webhookSecret := os.Getenv("WEBHOOK_SECRET")
	webhookPath := getEnv("WEBHOOK_PATH", "/webhook")
	databaseDir := getEnv("DATABASE_DIR", "/database")
	port := getEnv("PORT", "8080")
	metricsEnabled := getEnvBool("METRICS_ENABLED", true)
	logHealthChecks := getEnvBool("LOG_HEALTH_CHECKS", true)
	pageSize := getEnvInt("PAGE_SIZE", 10)
	sessionTimeout := getEnvDuration("SESSION_TIMEOUT", 600*time.Second)
	backfillDelay := getEnvDuration("BACKFILL_DELAY", 50*time.Millisecond)

	logging.Info("  BOT_TOKEN:            %s", maskSecret(botToken))
	logging.Info("  API_BASE_URL:         %s", apiBaseURL)
	logging.Info("  HISTORY_API_BASE_URL: %s", defaultString(historyAPIBaseURL, "(primary)"))
	logging.Info("  HISTORY_TOKEN:        %s", maskSecret(historyToken))
	logging.Info("  WEBHOOK_SECRET:       %s", maskSecret(webhookSecret))
	logging.Info("  WEBHOOK_PATH:         %s", webhookPath)
	logging.Info("  DATABASE_DIR:         %s", databaseDir)
	logging.Info("  PORT:                 %s", port)
	logging.Info("  METRICS_ENABLED:      %v", metricsEnabled)
	logging.Info("  LOG_HEALTH_CHECKS:    %v", logHealthChecks)
	logging.Info("  PAGE_SIZE:            %d", pageSize)
	logging.Info("  SESSION_TIMEOUT:      %s", sessionTimeout)
	logging.Info("  BACKFILL_DELAY:       %s", backfillDelay)
	logging.Info("  LOG_LEVEL:            %s", logging.GetLevel())

	if botToken == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}
	if webhookSecret == "" {
		return nil, fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if pageSize < 1 {
		return nil, fmt.Errorf("PAGE_SIZE must be at least 1, got %d", pageSize)
	}
	if sessionTimeout < time.Second {
		return nil, fmt.Errorf("SESSION_TIMEOUT must be at least 1s, got %s", sessionTimeout)
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	databaseDir, err := filepath.Abs(databaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database directory path: %w", err)
	}
	logging.Info("  Database directory (absolute): %s", databaseDir)

	if err := ensureDirectory(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory error: %w", err)
	}

	logging.Debug("  Testing database directory write access...")
	if err := testWriteAccess(databaseDir); err != nil {
		return nil, fmt.Errorf("database directory is not writable: %w", err)
	}
	logging.Info("  [OK] Database directory is writable")

	return &Config{
		BotToken:          botToken,
		APIBaseURL:        apiBaseURL,
		HistoryAPIBaseURL: historyAPIBaseURL,
		HistoryToken:      historyToken,
		WebhookSecret:     webhookSecret,
		WebhookPath:       webhookPath,
		DatabaseDir:       databaseDir,
		Port:              port,
		MetricsEnabled:    metricsEnabled,
		LogHealthChecks:   logHealthChecks,
		PageSize:          pageSize,
		SessionTimeout:    sessionTimeout,
		BackfillDelay:     backfillDelay,
		DatabasePath:      filepath.Join(databaseDir, "catalog.db"),
	}, nil
}

// LogDatabaseInit logs database initialization
func LogDatabaseInit(duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DATABASE INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Database initialized in %v", duration)
}

// LogBotIdentity logs the identity resolved from the chat platform
func LogBotIdentity(username string, id int64) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("BOT IDENTITY")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Connected as @%s (id %d)", username, id)
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	WebhookPath     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Webhook:       http://0.0.0.0:%s%s", config.Port, config.WebhookPath)
	logging.Info("    Health:        http://0.0.0.0:%s/health", config.Port)
	if config.MetricsEnabled {
		logging.Info("    Metrics:       http://0.0.0.0:%s/metrics", config.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___         _____                 __
   /  |/  /__  ____/ (_)___ _  / ___/___  ____ ______/ /_
  / /|_/ / _ \/ __  / / __ '/  \__ \/ _ \/ __ '/ ___/ __ \
 / /  / /  __/ /_/ / / /_/ /  ___/ /  __/ /_/ / /  / / / /
/_/  /_/\___/\__,_/_/\__,_/  /____/\___/\__,_/_/  /_/ /_/

------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path string) error {
	logging.Debug("  Checking directory: %s", path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Don't return error since write access was confirmed
	}
	return nil
}

// maskSecret keeps the first and last two characters of a credential
// visible for operator sanity checks.
func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 8 {
		return "****"
	}
	return s[:2] + "****" + s[len(s)-2:]
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Invalid duration value for %s: %q, using default: %s", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
