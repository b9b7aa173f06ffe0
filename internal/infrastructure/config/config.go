package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the sync service
type Config struct {
	App         AppConfig
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	Log         LogConfig
	WooCommerce WooCommerceConfig
	Sync        SyncConfig
	Storage     StorageConfig
	Telemetry   TelemetryConfig
}

// AppConfig holds application identity settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// HTTPConfig holds HTTP server settings
type HTTPConfig struct {
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	AllowOrigins      []string
	MaxBodyBytes      int64
	RateLimitRequests int // per client IP and window, 0 disables limiting
	RateLimitWindow   time.Duration
	SwaggerEnabled    bool // serves the API docs under /swagger
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level      string // debug, info, warn, error
	Format     string // json, console
	Output     string // stdout, stderr, or file path
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	GormLevel  string // silent, error, warn, info

	// GormSlowThreshold marks statements logged as slow; zero disables it
	GormSlowThreshold time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Driver          string // postgres or sqlite; sqlite uses DBName as the file path
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds redis settings. An empty host disables the distributed sync lock.
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// WooCommerceConfig holds the remote store connection settings
type WooCommerceConfig struct {
	URL            string
	ConsumerKey    string
	ConsumerSecret string
	APIVersion     string
	Timeout        time.Duration
	PageSize       int
	BatchSize      int
	RateLimit      float64 // requests per second, 0 disables limiting
	RateBurst      int
}

// SyncConfig controls sync passes and the interval scheduler
type SyncConfig struct {
	Timeout           time.Duration // deadline for one sync pass
	MaxRetries        int           // retries per remote call
	RetryDelay        time.Duration
	ProductPageSize   int
	LockTTL           time.Duration
	SchedulerEnabled  bool
	ProductInterval   time.Duration
	CategoryInterval  time.Duration
	OrderInterval     time.Duration
	MaxConcurrentJobs int
	JobRetryAttempts  int
	JobRetryDelay     time.Duration
	SystemActorID     string
}

// StorageConfig holds the product image store used to build media URLs
type StorageConfig struct {
	Type            string // "s3" or "static"
	Endpoint        string
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
	PublicBaseURL   string
	URLExpiry       time.Duration
}

// TelemetryConfig holds OpenTelemetry settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	ServiceName       string
	Insecure          bool
	DBTraceEnabled    bool
	MetricsEnabled    bool
	MetricsInterval   time.Duration
	LogsEnabled       bool

	ProfilingEnabled  bool
	PyroscopeAddress  string
	ProfileTypes      []string
	PyroscopeUser     string
	PyroscopePassword string
	SpanProfiles      bool // links CPU profiles to trace spans
}

// Load reads configuration from config.toml and ERP_ prefixed environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("ERP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),

			AllowOrigins:      v.GetStringSlice("http.allow_origins"),
			MaxBodyBytes:      v.GetInt64("http.max_body_bytes"),
			RateLimitRequests: v.GetInt("http.rate_limit_requests"),
			RateLimitWindow:   v.GetDuration("http.rate_limit_window"),
			SwaggerEnabled:    v.GetBool("http.swagger_enabled"),
		},
		Database: DatabaseConfig{
			Driver:          v.GetString("database.driver"),
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:             v.GetString("log.level"),
			Format:            v.GetString("log.format"),
			Output:            v.GetString("log.output"),
			MaxSizeMB:         v.GetInt("log.max_size_mb"),
			MaxBackups:        v.GetInt("log.max_backups"),
			MaxAgeDays:        v.GetInt("log.max_age_days"),
			GormLevel:         v.GetString("log.gorm_level"),
			GormSlowThreshold: v.GetDuration("log.gorm_slow_threshold"),
		},
		WooCommerce: WooCommerceConfig{
			URL:            v.GetString("woocommerce.url"),
			ConsumerKey:    v.GetString("woocommerce.consumer_key"),
			ConsumerSecret: v.GetString("woocommerce.consumer_secret"),
			APIVersion:     v.GetString("woocommerce.api_version"),
			Timeout:        v.GetDuration("woocommerce.timeout"),
			PageSize:       v.GetInt("woocommerce.page_size"),
			BatchSize:      v.GetInt("woocommerce.batch_size"),
			RateLimit:      v.GetFloat64("woocommerce.rate_limit"),
			RateBurst:      v.GetInt("woocommerce.rate_burst"),
		},
		Sync: SyncConfig{
			Timeout:           v.GetDuration("sync.timeout"),
			MaxRetries:        v.GetInt("sync.max_retries"),
			RetryDelay:        v.GetDuration("sync.retry_delay"),
			ProductPageSize:   v.GetInt("sync.product_page_size"),
			LockTTL:           v.GetDuration("sync.lock_ttl"),
			SchedulerEnabled:  v.GetBool("sync.scheduler_enabled"),
			ProductInterval:   v.GetDuration("sync.product_interval"),
			CategoryInterval:  v.GetDuration("sync.category_interval"),
			OrderInterval:     v.GetDuration("sync.order_interval"),
			MaxConcurrentJobs: v.GetInt("sync.max_concurrent_jobs"),
			JobRetryAttempts:  v.GetInt("sync.job_retry_attempts"),
			JobRetryDelay:     v.GetDuration("sync.job_retry_delay"),
			SystemActorID:     v.GetString("sync.system_actor_id"),
		},
		Storage: StorageConfig{
			Type:            v.GetString("storage.type"),
			Endpoint:        v.GetString("storage.endpoint"),
			Region:          v.GetString("storage.region"),
			Bucket:          v.GetString("storage.bucket"),
			AccessKeyID:     v.GetString("storage.access_key_id"),
			SecretAccessKey: v.GetString("storage.secret_access_key"),
			UsePathStyle:    v.GetBool("storage.use_path_style"),
			PublicBaseURL:   v.GetString("storage.public_base_url"),
			URLExpiry:       v.GetDuration("storage.url_expiry"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			ServiceName:       v.GetString("telemetry.service_name"),
			Insecure:          v.GetBool("telemetry.insecure"),
			DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
			MetricsEnabled:    v.GetBool("telemetry.metrics_enabled"),
			MetricsInterval:   v.GetDuration("telemetry.metrics_interval"),
			LogsEnabled:       v.GetBool("telemetry.logs_enabled"),
			ProfilingEnabled:  v.GetBool("telemetry.profiling_enabled"),
			PyroscopeAddress:  v.GetString("telemetry.pyroscope_address"),
			ProfileTypes:      v.GetStringSlice("telemetry.profile_types"),
			PyroscopeUser:     v.GetString("telemetry.pyroscope_user"),
			PyroscopePassword: v.GetString("telemetry.pyroscope_password"),
			SpanProfiles:      v.GetBool("telemetry.span_profiles"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storesync")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")

	v.SetDefault("http.read_timeout", 15*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Minute) // manual sync triggers run inline
	v.SetDefault("http.idle_timeout", 60*time.Second)
	v.SetDefault("http.max_body_bytes", 1<<20)
	v.SetDefault("http.rate_limit_requests", 60)
	v.SetDefault("http.rate_limit_window", time.Minute)
	v.SetDefault("http.swagger_enabled", true)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "erp")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("database.conn_max_idle_time", 30)

	v.SetDefault("redis.port", 6379)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.output", "stdout")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.gorm_level", "warn")
	v.SetDefault("log.gorm_slow_threshold", "200ms")

	v.SetDefault("woocommerce.api_version", "wc/v3")
	v.SetDefault("woocommerce.timeout", 30*time.Second)
	v.SetDefault("woocommerce.page_size", 100)
	v.SetDefault("woocommerce.batch_size", 99)
	v.SetDefault("woocommerce.rate_limit", 5.0)
	v.SetDefault("woocommerce.rate_burst", 5)

	v.SetDefault("sync.timeout", 10*time.Minute)
	v.SetDefault("sync.max_retries", 2)
	v.SetDefault("sync.retry_delay", 2*time.Second)
	v.SetDefault("sync.product_page_size", 100)
	v.SetDefault("sync.lock_ttl", 15*time.Minute)
	v.SetDefault("sync.product_interval", time.Hour)
	v.SetDefault("sync.category_interval", time.Hour)
	v.SetDefault("sync.order_interval", 5*time.Minute)
	v.SetDefault("sync.max_concurrent_jobs", 2)
	v.SetDefault("sync.job_retry_attempts", 3)
	v.SetDefault("sync.job_retry_delay", time.Minute)

	v.SetDefault("storage.type", "static")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.url_expiry", 24*time.Hour)

	v.SetDefault("telemetry.collector_endpoint", "localhost:4317")
	v.SetDefault("telemetry.sampling_ratio", 1.0)
	v.SetDefault("telemetry.service_name", "storesync")
	v.SetDefault("telemetry.metrics_interval", time.Minute)
	v.SetDefault("telemetry.pyroscope_address", "http://localhost:4040")
	v.SetDefault("telemetry.span_profiles", true)
}

// Validate performs validation on the configuration
func (c *Config) Validate() error {
	switch c.Log.GormLevel {
	case "", "silent", "error", "warn", "info", "debug":
	default:
		return fmt.Errorf("log.gorm_level must be silent, error, warn or info, got %q", c.Log.GormLevel)
	}
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'postgres' or 'sqlite', got %q", c.Database.Driver)
	}
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if c.WooCommerce.BatchSize <= 0 || c.WooCommerce.BatchSize > 100 {
		return fmt.Errorf("woocommerce.batch_size must be between 1 and 100, got %d", c.WooCommerce.BatchSize)
	}
	if c.Sync.MaxRetries < 0 {
		return fmt.Errorf("sync.max_retries cannot be negative")
	}
	if c.Sync.Timeout <= 0 {
		return fmt.Errorf("sync.timeout must be positive")
	}
	switch c.Storage.Type {
	case "static":
	case "s3":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for s3 storage")
		}
	default:
		return fmt.Errorf("storage.type must be 's3' or 'static', got %q", c.Storage.Type)
	}
	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}
	if c.Telemetry.ProfilingEnabled && c.Telemetry.PyroscopeAddress == "" {
		return fmt.Errorf("telemetry.pyroscope_address is required when profiling is enabled")
	}

	if c.App.Env == "production" {
		if c.WooCommerce.URL == "" || c.WooCommerce.ConsumerKey == "" || c.WooCommerce.ConsumerSecret == "" {
			return fmt.Errorf("woocommerce url, consumer_key and consumer_secret are required in production")
		}
		if !strings.HasPrefix(c.WooCommerce.URL, "https://") {
			return fmt.Errorf("woocommerce.url must use https in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Addr returns the redis host:port pair
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
