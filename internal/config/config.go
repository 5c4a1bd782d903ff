package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	Store      StoreConfig
	Artifacts  ArtifactsConfig
	S3         S3Config
	Ingest     IngestConfig
	Classifier ClassifierConfig
	JWT        JWTConfig
	Log        LogConfig
	CORS       CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// StoreConfig selects the ledger backend: "postgres" or "memory".
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
}

// ArtifactsConfig selects where page artifacts are written: "s3" or "local".
type ArtifactsConfig struct {
	Driver    string `mapstructure:"driver"`
	LocalRoot string `mapstructure:"local_root"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// IngestConfig holds ingestion pipeline settings.
type IngestConfig struct {
	MaxFileSizeMB       int64         `mapstructure:"max_file_size_mb"`
	Concurrency         int           `mapstructure:"concurrency"`
	SplitWorkers        int           `mapstructure:"split_workers"`
	RetryMaxAttempts    int           `mapstructure:"retry_max_attempts"`
	RetryInitialBackoff time.Duration `mapstructure:"retry_initial_backoff"`
	RetryMaxBackoff     time.Duration `mapstructure:"retry_max_backoff"`
	BreakerEnabled      bool          `mapstructure:"breaker_enabled"`
	BreakerOpenTimeout  time.Duration `mapstructure:"breaker_open_timeout"`
}

// ClassifierConfig holds rule table settings. An empty RulesFile uses the
// built-in rules.
type ClassifierConfig struct {
	RulesFile string `mapstructure:"rules_file"`
	Watch     bool   `mapstructure:"watch"`
}

// JWTConfig holds bearer token verification settings. An empty secret
// disables authentication.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from environment variables with the LITRECORD_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LITRECORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "litrecord")
	v.SetDefault("db.password", "litrecord_secret")
	v.SetDefault("db.name", "litrecord_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Store defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("artifacts.driver", "s3")
	v.SetDefault("artifacts.local_root", "cases")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "litrecord-artifacts")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Ingest defaults
	v.SetDefault("ingest.max_file_size_mb", 200)
	v.SetDefault("ingest.concurrency", 4)
	v.SetDefault("ingest.split_workers", 4)
	v.SetDefault("ingest.retry_max_attempts", 3)
	v.SetDefault("ingest.retry_initial_backoff", "200ms")
	v.SetDefault("ingest.retry_max_backoff", "2s")
	v.SetDefault("ingest.breaker_enabled", true)
	v.SetDefault("ingest.breaker_open_timeout", "30s")

	// Classifier defaults
	v.SetDefault("classifier.rules_file", "")
	v.SetDefault("classifier.watch", false)

	// JWT defaults
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "litrecord")

	// Log defaults
	v.SetDefault("log.level", "debug")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                  "LITRECORD_SERVER_PORT",
		"server.read_timeout":          "LITRECORD_SERVER_READ_TIMEOUT",
		"server.write_timeout":         "LITRECORD_SERVER_WRITE_TIMEOUT",
		"server.environment":           "LITRECORD_SERVER_ENVIRONMENT",
		"db.host":                      "LITRECORD_DB_HOST",
		"db.port":                      "LITRECORD_DB_PORT",
		"db.user":                      "LITRECORD_DB_USER",
		"db.password":                  "LITRECORD_DB_PASSWORD",
		"db.name":                      "LITRECORD_DB_NAME",
		"db.sslmode":                   "LITRECORD_DB_SSLMODE",
		"db.max_open":                  "LITRECORD_DB_MAX_OPEN",
		"db.max_idle":                  "LITRECORD_DB_MAX_IDLE",
		"store.driver":                 "LITRECORD_STORE_DRIVER",
		"artifacts.driver":             "LITRECORD_ARTIFACTS_DRIVER",
		"artifacts.local_root":         "LITRECORD_ARTIFACTS_LOCAL_ROOT",
		"s3.region":                    "LITRECORD_S3_REGION",
		"s3.bucket":                    "LITRECORD_S3_BUCKET",
		"s3.endpoint":                  "LITRECORD_S3_ENDPOINT",
		"s3.access_key":                "LITRECORD_S3_ACCESS_KEY",
		"s3.secret_key":                "LITRECORD_S3_SECRET_KEY",
		"s3.presign_expiry":            "LITRECORD_S3_PRESIGN_EXPIRY",
		"ingest.max_file_size_mb":      "LITRECORD_INGEST_MAX_FILE_SIZE_MB",
		"ingest.concurrency":           "LITRECORD_INGEST_CONCURRENCY",
		"ingest.split_workers":         "LITRECORD_INGEST_SPLIT_WORKERS",
		"ingest.retry_max_attempts":    "LITRECORD_INGEST_RETRY_MAX_ATTEMPTS",
		"ingest.retry_initial_backoff": "LITRECORD_INGEST_RETRY_INITIAL_BACKOFF",
		"ingest.retry_max_backoff":     "LITRECORD_INGEST_RETRY_MAX_BACKOFF",
		"ingest.breaker_enabled":       "LITRECORD_INGEST_BREAKER_ENABLED",
		"ingest.breaker_open_timeout":  "LITRECORD_INGEST_BREAKER_OPEN_TIMEOUT",
		"classifier.rules_file":        "LITRECORD_CLASSIFIER_RULES_FILE",
		"classifier.watch":             "LITRECORD_CLASSIFIER_WATCH",
		"jwt.secret":                   "LITRECORD_JWT_SECRET",
		"jwt.issuer":                   "LITRECORD_JWT_ISSUER",
		"log.level":                    "LITRECORD_LOG_LEVEL",
		"cors.allowed_origins":         "LITRECORD_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if LITRECORD_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("LITRECORD_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Store = StoreConfig{
		Driver: strings.ToLower(v.GetString("store.driver")),
	}
	cfg.Artifacts = ArtifactsConfig{
		Driver:    strings.ToLower(v.GetString("artifacts.driver")),
		LocalRoot: v.GetString("artifacts.local_root"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Ingest = IngestConfig{
		MaxFileSizeMB:       v.GetInt64("ingest.max_file_size_mb"),
		Concurrency:         v.GetInt("ingest.concurrency"),
		SplitWorkers:        v.GetInt("ingest.split_workers"),
		RetryMaxAttempts:    v.GetInt("ingest.retry_max_attempts"),
		RetryInitialBackoff: v.GetDuration("ingest.retry_initial_backoff"),
		RetryMaxBackoff:     v.GetDuration("ingest.retry_max_backoff"),
		BreakerEnabled:      v.GetBool("ingest.breaker_enabled"),
		BreakerOpenTimeout:  v.GetDuration("ingest.breaker_open_timeout"),
	}
	cfg.Classifier = ClassifierConfig{
		RulesFile: v.GetString("classifier.rules_file"),
		Watch:     v.GetBool("classifier.watch"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.Log = LogConfig{
		Level: v.GetString("log.level"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "postgres", "memory":
	default:
		return fmt.Errorf("unsupported store driver %q (want postgres or memory)", c.Store.Driver)
	}
	switch c.Artifacts.Driver {
	case "s3", "local":
	default:
		return fmt.Errorf("unsupported artifacts driver %q (want s3 or local)", c.Artifacts.Driver)
	}
	if c.Ingest.Concurrency <= 0 {
		return fmt.Errorf("ingest.concurrency must be positive, got %d", c.Ingest.Concurrency)
	}
	return nil
}
