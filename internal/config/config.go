package config

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Cache    CacheConfig
	Logger   LoggerConfig
	Security SecurityConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	CSVFile string
}

type CacheConfig struct {
	MaxSources    int
	LoadWorkers   int
	LoadBatchSize int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type SecurityConfig struct {
	EnableCSRF      bool
	EnableRateLimit bool
	RateLimitRPS    int
	RateLimitBurst  int
	AllowedOrigins  []string
	TrustedProxies  []string
}

type MetricsConfig struct {
	Enabled bool
}

// settings maps each config key to its environment variable and default.
var settings = []struct {
	key        string
	env        string
	defaultVal any
}{
	{"server.host", "SERVER_HOST", "localhost"},
	{"server.port", "SERVER_PORT", 8084},
	{"server.read_timeout", "SERVER_READ_TIMEOUT", 10 * time.Second},
	{"server.write_timeout", "SERVER_WRITE_TIMEOUT", 10 * time.Second},
	{"server.idle_timeout", "SERVER_IDLE_TIMEOUT", 60 * time.Second},
	{"server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT", 30 * time.Second},
	{"database.csv_file", "CSV_FILE", "urbanmart_sales.csv"},
	{"cache.max_sources", "CACHE_MAX_SOURCES", 8},
	{"cache.load_workers", "LOAD_WORKERS", 4},
	{"cache.load_batch_size", "LOAD_BATCH_SIZE", 5000},
	{"logger.level", "LOG_LEVEL", "info"},
	{"logger.format", "LOG_FORMAT", "json"},
	{"security.csrf_enabled", "SECURITY_CSRF_ENABLED", true},
	{"security.rate_limit_enabled", "SECURITY_RATE_LIMIT_ENABLED", true},
	{"security.rate_limit_rps", "SECURITY_RATE_LIMIT_RPS", 100},
	{"security.rate_limit_burst", "SECURITY_RATE_LIMIT_BURST", 10},
	{"security.allowed_origins", "SECURITY_ALLOWED_ORIGINS", "http://localhost:8084"},
	{"security.trusted_proxies", "SECURITY_TRUSTED_PROXIES", "127.0.0.1"},
	{"metrics.enabled", "METRICS_ENABLED", true},
	{"config_file", "CONFIG_FILE", ""},
}

func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads configuration through v, so callers can bind command-line
// flags onto it first. Precedence is flag, env, config file, default.
func LoadFrom(v *viper.Viper) (*Config, error) {
	for _, s := range settings {
		v.SetDefault(s.key, s.defaultVal)
		if err := v.BindEnv(s.key, s.env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", s.env, err)
		}
	}

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Port:            v.GetInt("server.port"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			IdleTimeout:     v.GetDuration("server.idle_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Database: DatabaseConfig{
			CSVFile: v.GetString("database.csv_file"),
		},
		Cache: CacheConfig{
			MaxSources:    v.GetInt("cache.max_sources"),
			LoadWorkers:   v.GetInt("cache.load_workers"),
			LoadBatchSize: v.GetInt("cache.load_batch_size"),
		},
		Logger: LoggerConfig{
			Level:  strings.ToLower(v.GetString("logger.level")),
			Format: strings.ToLower(v.GetString("logger.format")),
		},
		Security: SecurityConfig{
			EnableCSRF:      v.GetBool("security.csrf_enabled"),
			EnableRateLimit: v.GetBool("security.rate_limit_enabled"),
			RateLimitRPS:    v.GetInt("security.rate_limit_rps"),
			RateLimitBurst:  v.GetInt("security.rate_limit_burst"),
			AllowedOrigins:  stringList(v.Get("security.allowed_origins")),
			TrustedProxies:  stringList(v.Get("security.trusted_proxies")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Database.CSVFile == "" {
		return fmt.Errorf("CSV file path cannot be empty")
	}

	if c.Cache.MaxSources <= 0 {
		return fmt.Errorf("cache max sources must be positive")
	}

	if c.Cache.LoadWorkers <= 0 || c.Cache.LoadBatchSize <= 0 {
		return fmt.Errorf("load workers and batch size must be positive")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.Logger.Level) {
		return fmt.Errorf("invalid log level %q, must be one of: %s", c.Logger.Level, strings.Join(validLogLevels, ", "))
	}

	validLogFormats := []string{"json", "text"}
	if !slices.Contains(validLogFormats, c.Logger.Format) {
		return fmt.Errorf("invalid log format %q, must be one of: %s", c.Logger.Format, strings.Join(validLogFormats, ", "))
	}

	if c.Security.RateLimitRPS <= 0 {
		return fmt.Errorf("rate limit RPS must be positive")
	}

	if c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit burst must be positive")
	}

	return nil
}

// stringList accepts a comma-separated string from env or a list from a
// config file.
func stringList(raw any) []string {
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	case []string:
		parts = val
	case []any:
		for _, item := range val {
			parts = append(parts, fmt.Sprint(item))
		}
	}

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
