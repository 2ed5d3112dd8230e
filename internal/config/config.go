// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Analysis modes. A deployment serves exactly one of them.
const (
	ModeDirect = "direct"
	ModeSearch = "search"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	NATS        NATSConfig
	Redis       RedisConfig
	Trends      TrendsConfig
	Telegram    TelegramConfig
	Search      SearchConfig
	Analysis    AnalysisConfig
	Log         LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds database configuration. Persistence of analyses is
// optional and stays off unless Enabled is set.
type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	SSLMode      string
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	Enabled        bool
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
	EventsTopic    string
}

// RedisConfig holds the trend cache configuration. An empty URL disables caching.
type RedisConfig struct {
	URL      string
	TrendTTL time.Duration
}

// TrendsConfig holds the trend collector endpoints and credentials
type TrendsConfig struct {
	HTTPTimeout time.Duration
	// Region applies to every collector when a request names none. Empty
	// leaves each collector on its own region.
	Region string

	GoogleFeedURL string
	GoogleRegion  string

	XBaseURL      string
	XAPIHost      string
	XBearerToken  string
	XWOEID        int
	XFallbackTerm string

	YouTubeBaseURL    string
	YouTubeAPIKey     string
	YouTubeRegion     string
	YouTubeMaxResults int
}

// TelegramConfig holds the Bot API configuration used for channel lookups
type TelegramConfig struct {
	BaseURL  string
	BotToken string
	Timeout  time.Duration
}

// SearchConfig holds the search-aggregation API used to discover channels
type SearchConfig struct {
	BaseURL   string
	APIKey    string
	Engine    string
	ResultCap int
	Timeout   time.Duration
}

// AnalysisConfig holds request orchestration settings
type AnalysisConfig struct {
	Mode    string
	PaceMin time.Duration
	PaceMax time.Duration
}

// LogConfig holds logger settings
type LogConfig struct {
	Level   string
	Service string
}

// Addr returns the listen address for the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ConnString returns the pgx connection string.
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 80*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Enabled:      getEnvAsBool("DB_ENABLED", false),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "trendlens"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 2),
			MaxLifetime:  getEnvAsDuration("DB_MAX_LIFETIME", 5*time.Minute),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		NATS: NATSConfig{
			Enabled:        getEnvAsBool("NATS_ENABLED", false),
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
			EventsTopic:    getEnv("NATS_EVENTS_TOPIC", "analysis"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", ""),
			TrendTTL: getEnvAsDuration("REDIS_TREND_TTL", 10*time.Minute),
		},
		Trends: TrendsConfig{
			HTTPTimeout: getEnvAsDuration("TRENDS_HTTP_TIMEOUT", 10*time.Second),
			Region:      strings.ToUpper(getEnv("TRENDS_REGION", "")),

			GoogleFeedURL: getEnv("GOOGLE_TRENDS_FEED_URL", "https://trends.google.com/trending/rss"),
			GoogleRegion:  getEnv("GOOGLE_TRENDS_REGION", "US"),

			XBaseURL:      getEnv("X_API_BASE_URL", "https://api.twitter.com/1.1"),
			XAPIHost:      getEnv("X_API_HOST", "https://api.twitter.com"),
			XBearerToken:  getEnv("X_API_BEARER_TOKEN", ""),
			XWOEID:        getEnvAsInt("X_TRENDS_WOEID", 1),
			XFallbackTerm: getEnv("X_FALLBACK_QUERY", "trending"),

			YouTubeBaseURL:    getEnv("YOUTUBE_API_BASE_URL", "https://www.googleapis.com"),
			YouTubeAPIKey:     getEnv("YOUTUBE_API_KEY", ""),
			YouTubeRegion:     getEnv("YOUTUBE_REGION", "US"),
			YouTubeMaxResults: getEnvAsInt("YOUTUBE_MAX_RESULTS", 10),
		},
		Telegram: TelegramConfig{
			BaseURL:  getEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org"),
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			Timeout:  getEnvAsDuration("TELEGRAM_TIMEOUT", 10*time.Second),
		},
		Search: SearchConfig{
			BaseURL:   getEnv("SEARCH_API_BASE_URL", "https://serpapi.com"),
			APIKey:    getEnv("SEARCH_API_KEY", ""),
			Engine:    getEnv("SEARCH_API_ENGINE", "google"),
			ResultCap: getEnvAsInt("SEARCH_RESULT_CAP", 20),
			Timeout:   getEnvAsDuration("SEARCH_TIMEOUT", 15*time.Second),
		},
		Analysis: AnalysisConfig{
			Mode:    strings.ToLower(getEnv("ANALYSIS_MODE", ModeDirect)),
			PaceMin: getEnvAsDuration("ANALYSIS_PACE_MIN", 500*time.Millisecond),
			PaceMax: getEnvAsDuration("ANALYSIS_PACE_MAX", 1500*time.Millisecond),
		},
		Log: LogConfig{
			Level:   getEnv("LOG_LEVEL", "info"),
			Service: getEnv("LOG_SERVICE", "trendlens"),
		},
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	switch config.Analysis.Mode {
	case ModeDirect, ModeSearch:
	default:
		return fmt.Errorf("unsupported analysis mode %q (want %q or %q)", config.Analysis.Mode, ModeDirect, ModeSearch)
	}

	if config.Analysis.PaceMin < 0 || config.Analysis.PaceMax < config.Analysis.PaceMin {
		return fmt.Errorf("invalid pacing window [%s, %s]", config.Analysis.PaceMin, config.Analysis.PaceMax)
	}

	if config.Search.ResultCap <= 0 {
		return fmt.Errorf("search result cap must be positive, got %d", config.Search.ResultCap)
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
