package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	Source    SourceConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
	Report    ReportConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// SourceConfig selects where the four spreadsheets are read from
type SourceConfig struct {
	Backend string // file, s3
	Dir     string // base directory for the file backend
	Sheet   string // xlsx sheet name; empty means the first sheet
	Files   map[string]string
}

// StorageConfig holds S3-compatible object storage settings for the s3 source
type StorageConfig struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UseSSL       bool
	UsePathStyle bool
	Prefix       string
}

// CacheConfig selects the table cache backend
type CacheConfig struct {
	Backend         string // memory, redis
	KeyPrefix       string
	RefreshInterval time.Duration // 0 disables the periodic reload
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
}

// ReportConfig holds report tuning knobs
type ReportConfig struct {
	MobileMethods []string // payment methods counted as mobile banking
	TopN          int      // rows in top-N tables
	InsightN      int      // categories listed in cashbook insights
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool          // Whether to export traces and metrics
	CollectorEndpoint string        // OTLP gRPC endpoint (e.g., "localhost:4317")
	SamplingRatio     float64       // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string        // Service name on traces and metrics
	Insecure          bool          // Use a non-TLS connection to the collector
	ExportInterval    time.Duration // Metrics push interval
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with DASH_ prefix (e.g., DASH_SOURCE_DIR)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("DASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Source: SourceConfig{
			Backend: v.GetString("source.backend"),
			Dir:     v.GetString("source.dir"),
			Sheet:   v.GetString("source.sheet"),
			Files: map[string]string{
				"sales":    v.GetString("source.files.sales"),
				"cashbook": v.GetString("source.files.cashbook"),
				"bankbook": v.GetString("source.files.bankbook"),
				"purchase": v.GetString("source.files.purchase"),
			},
		},
		Storage: StorageConfig{
			Endpoint:     v.GetString("storage.endpoint"),
			Region:       v.GetString("storage.region"),
			Bucket:       v.GetString("storage.bucket"),
			AccessKey:    v.GetString("storage.access_key"),
			SecretKey:    v.GetString("storage.secret_key"),
			UseSSL:       v.GetBool("storage.use_ssl"),
			UsePathStyle: v.GetBool("storage.use_path_style"),
			Prefix:       v.GetString("storage.prefix"),
		},
		Cache: CacheConfig{
			Backend:         v.GetString("cache.backend"),
			KeyPrefix:       v.GetString("cache.key_prefix"),
			RefreshInterval: v.GetDuration("cache.refresh_interval"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
		},
		Report: ReportConfig{
			MobileMethods: v.GetStringSlice("report.mobile_methods"),
			TopN:          v.GetInt("report.top_n"),
			InsightN:      v.GetInt("report.insight_n"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			ExportInterval:    v.GetDuration("telemetry.export_interval"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DefaultFiles maps each logical table to its default spreadsheet name
var DefaultFiles = map[string]string{
	"sales":    "sales.xlsx",
	"cashbook": "cashbook.xlsx",
	"bankbook": "bankbook.xlsx",
	"purchase": "purchase.xlsx",
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tafa-dashboard"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Source.Backend == "" {
		cfg.Source.Backend = "file"
	}
	if cfg.Source.Dir == "" {
		cfg.Source.Dir = "./data"
	}
	if cfg.Source.Files == nil {
		cfg.Source.Files = map[string]string{}
	}
	for name, file := range DefaultFiles {
		if cfg.Source.Files[name] == "" {
			cfg.Source.Files[name] = file
		}
	}
	if cfg.Storage.Region == "" {
		cfg.Storage.Region = "us-east-1"
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = "memory"
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "dashboard:table:"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	// Empty CORS origins mean no cross-origin requests until configured.
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "X-Request-ID"}
	}
	if len(cfg.Report.MobileMethods) == 0 {
		cfg.Report.MobileMethods = []string{"bKash", "Nagad", "Rocket"}
	}
	if cfg.Report.TopN == 0 {
		cfg.Report.TopN = 10
	}
	if cfg.Report.InsightN == 0 {
		cfg.Report.InsightN = 3
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = cfg.App.Name
	}
	if cfg.Telemetry.ExportInterval == 0 {
		cfg.Telemetry.ExportInterval = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	switch c.Source.Backend {
	case "file":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required when source.backend is s3")
		}
	default:
		return fmt.Errorf("source.backend must be file or s3, got %q", c.Source.Backend)
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}

	if c.Cache.RefreshInterval < 0 {
		return fmt.Errorf("cache.refresh_interval cannot be negative")
	}
	if c.Report.TopN < 0 {
		return fmt.Errorf("report.top_n cannot be negative")
	}
	if c.Report.InsightN < 0 {
		return fmt.Errorf("report.insight_n cannot be negative")
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
	}

	return nil
}

// IsDevelopment reports whether the app runs in development mode
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "" || c.Env == "development"
}
