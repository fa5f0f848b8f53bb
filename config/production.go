// Package config provides configuration management and environment variable handling for the application
package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store providers
const (
	StoreProviderPostgres = "postgres"
	StoreProviderMemory   = "memory"
)

// ProductionConfig holds all configuration for production environment
type ProductionConfig struct {
	Database   DatabaseConfig   `json:"database"`
	Server     ServerConfig     `json:"server"`
	Security   SecurityConfig   `json:"security"`
	JWT        JWTConfig        `json:"jwt"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Cache      CacheConfig      `json:"cache"`
	Store      StoreConfig      `json:"store"`
	Queue      QueueConfig      `json:"queue"`
	Deployment DeploymentConfig `json:"deployment"`
}

type DatabaseConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	Name            string        `json:"name"`
	User            string        `json:"user"`
	Password        string        `json:"password"`
	SSLMode         string        `json:"ssl_mode"`
	MaxOpenConns    int           `json:"max_open_conns"`
	MaxIdleConns    int           `json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	SlowQueryLog    bool          `json:"slow_query_log"`
	SlowQueryTime   time.Duration `json:"slow_query_time"`
	AutoMigrate     bool          `json:"auto_migrate"`
}

// DSN renders the postgres connection string
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"` // 0 disables; the event stream stays open
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
	EnableDocs      bool          `json:"enable_docs"`
}

// Address is the listen address
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type SecurityConfig struct {
	// CORS
	AllowedOrigins []string `json:"allowed_origins"`

	// Rate Limiting
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window, 0 disables
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type JWTConfig struct {
	SecretKey      string        `json:"secret_key"`
	PrivateKey     string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey      string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys     bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	Issuer         string        `json:"issuer"`
	Audience       string        `json:"audience"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type CacheConfig struct {
	Enabled     bool   `json:"enabled"`
	RedisURL    string `json:"redis_url"`
	RedisDB     int    `json:"redis_db"`
	RedisPrefix string `json:"redis_prefix"`
}

// StoreConfig selects where contacts and call logs live
type StoreConfig struct {
	Provider    string `json:"provider"` // postgres, memory
	SeedSamples bool   `json:"seed_samples"`
}

// WindowRule maps a title keyword to an inclusive range of local hours
type WindowRule struct {
	Keyword string `json:"keyword"`
	Start   int    `json:"start"`
	End     int    `json:"end"`
}

// TimezoneBucket groups zones whose name contains any of Match
type TimezoneBucket struct {
	Label string   `json:"label"`
	Match []string `json:"match"`
}

// QueueConfig tunes call windows, grouping and the background refresh
type QueueConfig struct {
	WindowRules     []WindowRule     `json:"window_rules"`
	DefaultStart    int              `json:"default_start"`
	DefaultEnd      int              `json:"default_end"`
	DefaultTimezone string           `json:"default_timezone"`
	RefreshInterval time.Duration    `json:"refresh_interval"`
	BlockTick       time.Duration    `json:"block_tick"`
	TimezoneBuckets []TimezoneBucket `json:"timezone_buckets"`
}

type DeploymentConfig struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	CommitHash  string `json:"commit_hash"`
	BuildTime   string `json:"build_time"`
}

// LoadProductionConfig loads and validates configuration from environment variables
func LoadProductionConfig() (*ProductionConfig, error) {
	// Load environment variables from .env file
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var parseErrors []string

	rules, err := ParseWindowRules(getEnvString("QUEUE_WINDOW_RULES", ""))
	if err != nil {
		parseErrors = append(parseErrors, fmt.Sprintf("QUEUE_WINDOW_RULES: %v", err))
	}
	defStart, defEnd, err := ParseHourRange(getEnvString("QUEUE_DEFAULT_WINDOW", "9-16"))
	if err != nil {
		parseErrors = append(parseErrors, fmt.Sprintf("QUEUE_DEFAULT_WINDOW: %v", err))
	}
	buckets, err := ParseTimezoneBuckets(getEnvString("QUEUE_TIMEZONE_BUCKETS", ""))
	if err != nil {
		parseErrors = append(parseErrors, fmt.Sprintf("QUEUE_TIMEZONE_BUCKETS: %v", err))
	}
	if len(parseErrors) > 0 {
		return nil, fmt.Errorf("configuration parsing failed:\n  - %s", strings.Join(parseErrors, "\n  - "))
	}

	cfg := &ProductionConfig{
		Database: DatabaseConfig{
			Host:            getEnvString("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			Name:            getEnvString("DB_NAME", "sdr_power_queue"),
			User:            getEnvString("DB_USER", "postgres"),
			Password:        getEnvString("DB_PASSWORD", ""),
			SSLMode:         getEnvString("DB_SSL_MODE", "require"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvDuration("DB_CONN_MAX_IDLE_TIME", 15*time.Minute),
			SlowQueryLog:    getEnvBool("DB_SLOW_QUERY_LOG", true),
			SlowQueryTime:   getEnvDuration("DB_SLOW_QUERY_TIME", 1*time.Second),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 0),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
			EnableDocs:      getEnvBool("SERVER_ENABLE_DOCS", false),
		},
		Security: SecurityConfig{
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			GlobalRateLimit: getEnvInt("GLOBAL_RATE_LIMIT", 600),
			RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		JWT: JWTConfig{
			SecretKey:      getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:     getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:      getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:     getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			Issuer:         getEnvString("JWT_ISSUER", "sdr-power-queue"),
			Audience:       getEnvString("JWT_AUDIENCE", "sdr-power-queue-api"),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "/var/log/sdr-power-queue/app.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100), // MB
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 10),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30), // days
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Cache: CacheConfig{
			Enabled:     getEnvBool("CACHE_ENABLED", false),
			RedisURL:    getEnvString("REDIS_URL", "redis://localhost:6379"),
			RedisDB:     getEnvInt("REDIS_DB", 0),
			RedisPrefix: getEnvString("REDIS_PREFIX", "sdr:"),
		},
		Store: StoreConfig{
			Provider:    strings.ToLower(getEnvString("STORE_PROVIDER", StoreProviderPostgres)),
			SeedSamples: getEnvBool("STORE_SEED_SAMPLES", false),
		},
		Queue: QueueConfig{
			WindowRules:     rules,
			DefaultStart:    defStart,
			DefaultEnd:      defEnd,
			DefaultTimezone: getEnvString("QUEUE_DEFAULT_TIMEZONE", "America/New_York"),
			RefreshInterval: getEnvDuration("QUEUE_REFRESH_INTERVAL", 1*time.Minute),
			BlockTick:       getEnvDuration("QUEUE_BLOCK_TICK_INTERVAL", 1*time.Second),
			TimezoneBuckets: buckets,
		},
		Deployment: DeploymentConfig{
			Environment: getEnvString("APP_ENV", "production"),
			Version:     getEnvString("APP_VERSION", "1.0.0"),
			CommitHash:  getEnvString("COMMIT_HASH", ""),
			BuildTime:   getEnvString("BUILD_TIME", ""),
		},
	}

	if err := ValidateProductionConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseHourRange parses "9-16" into an inclusive range of local hours
func ParseHourRange(raw string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("hour range %q must look like start-end", raw)
	}
	start, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("hour range %q: invalid start: %w", raw, err)
	}
	end, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("hour range %q: invalid end: %w", raw, err)
	}
	if start < 0 || end > 23 || start > end {
		return 0, 0, fmt.Errorf("hour range %q must satisfy 0 <= start <= end <= 23", raw)
	}
	return start, end, nil
}

// ParseWindowRules parses "distance ed=10-16;lms=10-16;ada=11-15".
// Order is kept; the first keyword found in a title wins. An empty string yields nil.
func ParseWindowRules(raw string) ([]WindowRule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var rules []WindowRule
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		keyword, hours, ok := strings.Cut(item, "=")
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if !ok || keyword == "" {
			return nil, fmt.Errorf("window rule %q must look like keyword=start-end", item)
		}
		start, end, err := ParseHourRange(hours)
		if err != nil {
			return nil, fmt.Errorf("window rule %q: %w", keyword, err)
		}
		rules = append(rules, WindowRule{Keyword: keyword, Start: start, End: end})
	}
	return rules, nil
}

// ParseTimezoneBuckets parses "Pacific=Los_Angeles;Mountain=Denver|Phoenix".
// Buckets are tried in order and the first match labels a zone; grouped views still list
// groups in the order their first contact appears. An empty string yields nil.
func ParseTimezoneBuckets(raw string) ([]TimezoneBucket, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var buckets []TimezoneBucket
	seen := make(map[string]bool)
	for _, item := range strings.Split(raw, ";") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		label, matches, ok := strings.Cut(item, "=")
		label = strings.TrimSpace(label)
		if !ok || label == "" {
			return nil, fmt.Errorf("timezone bucket %q must look like Label=Zone|Zone", item)
		}
		if seen[label] {
			return nil, fmt.Errorf("timezone bucket %q is listed twice", label)
		}
		seen[label] = true

		var match []string
		for _, m := range strings.Split(matches, "|") {
			if m = strings.TrimSpace(m); m != "" {
				match = append(match, m)
			}
		}
		if len(match) == 0 {
			return nil, fmt.Errorf("timezone bucket %q has no zones", label)
		}
		buckets = append(buckets, TimezoneBucket{Label: label, Match: match})
	}
	return buckets, nil
}

// loadEnvFile loads environment variables from .env file
func loadEnvFile() error {
	envFile := ".env"

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(envFile)
	if err != nil {
		return fmt.Errorf("failed to open .env file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		// Remove quotes if present
		if len(value) >= 2 && ((strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`)) ||
			(strings.HasPrefix(value, `'`) && strings.HasSuffix(value, `'`))) {
			value = value[1 : len(value)-1]
		}

		// Set environment variable if not already set
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading .env file: %w", err)
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}

// ValidateProductionConfig validates the production configuration
func ValidateProductionConfig(cfg *ProductionConfig) error {
	var errors []string

	// Store provider and, for postgres, the database
	switch cfg.Store.Provider {
	case StoreProviderPostgres:
		if cfg.Database.Host == "" {
			errors = append(errors, "DB_HOST is required")
		}
		if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
			errors = append(errors, "DB_PORT must be between 1 and 65535")
		}
		if cfg.Database.Name == "" {
			errors = append(errors, "DB_NAME is required")
		}
		if cfg.Database.User == "" {
			errors = append(errors, "DB_USER is required")
		}
		if cfg.Database.Password == "" {
			errors = append(errors, "DB_PASSWORD is required")
		}
	case StoreProviderMemory:
	default:
		errors = append(errors, fmt.Sprintf("STORE_PROVIDER must be %s or %s", StoreProviderPostgres, StoreProviderMemory))
	}

	// Validate JWT configuration
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			errors = append(errors, "JWT_PRIVATE_KEY and JWT_PUBLIC_KEY are required when JWT_USE_RSA_KEYS is set")
		}
	} else if len(cfg.JWT.SecretKey) < 32 {
		errors = append(errors, "JWT_SECRET_KEY must be at least 32 characters long")
	}
	if cfg.JWT.AccessTokenTTL <= 0 {
		errors = append(errors, "JWT_ACCESS_TOKEN_TTL must be positive")
	}
	if cfg.JWT.Issuer == "" {
		errors = append(errors, "JWT_ISSUER is required")
	}
	if cfg.JWT.Audience == "" {
		errors = append(errors, "JWT_AUDIENCE is required")
	}

	// Validate server configuration
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errors = append(errors, "SERVER_PORT must be between 1 and 65535")
	}
	if cfg.Server.ReadTimeout <= 0 {
		errors = append(errors, "SERVER_READ_TIMEOUT must be positive")
	}
	if cfg.Server.WriteTimeout < 0 {
		errors = append(errors, "SERVER_WRITE_TIMEOUT must not be negative")
	}
	if cfg.Server.IdleTimeout <= 0 {
		errors = append(errors, "SERVER_IDLE_TIMEOUT must be positive")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		errors = append(errors, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	}

	if cfg.Security.GlobalRateLimit < 0 {
		errors = append(errors, "GLOBAL_RATE_LIMIT must not be negative")
	}

	// Validate logging configuration
	switch cfg.Logging.Output {
	case "stdout":
	case "file", "both":
		if cfg.Logging.FilePath == "" {
			errors = append(errors, "LOG_FILE_PATH is required when LOG_OUTPUT writes to a file")
		}
	default:
		errors = append(errors, "LOG_OUTPUT must be stdout, file or both")
	}

	if cfg.Metrics.Enabled && !strings.HasPrefix(cfg.Metrics.Path, "/") {
		errors = append(errors, "METRICS_PATH must start with /")
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisURL == "" {
		errors = append(errors, "REDIS_URL is required when CACHE_ENABLED is set")
	}

	// Validate queue configuration
	if cfg.Queue.DefaultTimezone != "" {
		if _, err := time.LoadLocation(cfg.Queue.DefaultTimezone); err != nil {
			errors = append(errors, fmt.Sprintf("QUEUE_DEFAULT_TIMEZONE %q is not a known zone", cfg.Queue.DefaultTimezone))
		}
	}
	if cfg.Queue.RefreshInterval <= 0 {
		errors = append(errors, "QUEUE_REFRESH_INTERVAL must be positive")
	}
	if cfg.Queue.BlockTick <= 0 {
		errors = append(errors, "QUEUE_BLOCK_TICK_INTERVAL must be positive")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}
