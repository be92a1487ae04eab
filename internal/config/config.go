// Package config loads the service configuration from a YAML file with
// environment variable overrides.
package config

import (
	"detector/pkg/domain"
	"errors"
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config represents the application configuration structure.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"30s" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// AllowedOrigins is the CORS allow list; "*" allows any origin
		AllowedOrigins []string `env:"HTTP_ALLOWED_ORIGINS" env-default:"*" yaml:"allowedOrigins"`
	} `yaml:"http"`

	JWT struct {
		// PublicKey verifies bearer tokens (PEM encoded RSA key)
		PublicKey string `env:"JWT_PUBLIC_KEY" yaml:"publicKey"`
		// PrivateKey signs tokens minted by the jwt command
		PrivateKey string `env:"JWT_PRIVATE_KEY" yaml:"privateKey"`
	} `yaml:"jwt"`

	// Database contains all database connection related configurations
	Database struct {
		Username string `env:"DATABASE_USERNAME" env-default:"myuser" yaml:"username"`
		Password string `env:"DATABASE_PASSWORD" env-default:"mypassword" yaml:"password"`
		Host     string `env:"DATABASE_HOST" env-default:"localhost" yaml:"host"`
		Port     int    `env:"DATABASE_PORT" env-default:"5432" yaml:"port"`
		// SslMode defines the SSL mode for the database connection
		SslMode      string `env:"DATABASE_SSL_MODE" env-default:"disable" yaml:"sslMode"`
		DatabaseName string `env:"DATABASE_NAME" env-default:"detector" yaml:"name"`
		// MaxOpenConnections limits the number of open connections to the database
		MaxOpenConnections int `env:"DATABASE_MAX_OPEN_CONNECTIONS" env-default:"10" yaml:"maxOpenConnections"`
		// MaxIdleConnections limits the number of connections in the idle connection pool
		MaxIdleConnections int `env:"DATABASE_MAX_IDLE_CONNECTIONS" env-default:"8" yaml:"maxIdleConnections"`
		// ConnMaxLifetime is the maximum amount of time a connection may be reused
		ConnMaxLifetime time.Duration `env:"DATABASE_CONNECTION_MAX_LIFETIME" env-default:"3m" yaml:"connMaxLifetime"`
		// ConnMaxIdleTime is the maximum amount of time a connection may be idle
		ConnMaxIdleTime time.Duration `env:"DATABASE_CONNECTION_MAX_IDLE_TIME" env-default:"3m" yaml:"connMaxIdleTime"`
	} `yaml:"database"`

	// Queue configures the background analysis workers
	Queue struct {
		// MaxWorkers is the number of items analyzed in parallel by one process
		MaxWorkers int `env:"QUEUE_MAX_WORKERS" env-default:"10" yaml:"maxWorkers"`
		// JobTimeout bounds the analysis of a single item
		JobTimeout time.Duration `env:"QUEUE_JOB_TIMEOUT" env-default:"5m" yaml:"jobTimeout"`
	} `yaml:"queue"`

	// Blob selects where uploads wait until they are analyzed
	Blob struct {
		// Driver is either "memory" or "minio"
		Driver    string `env:"BLOB_DRIVER" env-default:"memory" yaml:"driver"`
		Endpoint  string `env:"BLOB_ENDPOINT" env-default:"localhost:9000" yaml:"endpoint"`
		AccessKey string `env:"BLOB_ACCESS_KEY" yaml:"accessKey"`
		SecretKey string `env:"BLOB_SECRET_KEY" yaml:"secretKey"`
		Bucket    string `env:"BLOB_BUCKET" env-default:"detector-uploads" yaml:"bucket"`
		UseSSL    bool   `env:"BLOB_USE_SSL" env-default:"false" yaml:"useSSL"`
		Prefix    string `env:"BLOB_PREFIX" env-default:"uploads/" yaml:"prefix"`
	} `yaml:"blob"`

	// Vision configures the reverse image search service
	Vision struct {
		// APIKey is checked on the first search, not at startup
		APIKey     string        `env:"VISION_API_KEY" yaml:"apiKey"`
		Endpoint   string        `env:"VISION_ENDPOINT" env-default:"https://vision.googleapis.com/v1" yaml:"endpoint"`
		MaxResults int           `env:"VISION_MAX_RESULTS" env-default:"100" yaml:"maxResults"`
		Timeout    time.Duration `env:"VISION_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// FilterTextSearchPages drops related pages that look like text search results
		FilterTextSearchPages bool `env:"VISION_FILTER_TEXT_SEARCH_PAGES" env-default:"true" yaml:"filterTextSearchPages"` //nolint: lll
	} `yaml:"vision"`

	// Gemini configures the judgment service
	Gemini struct {
		APIKey      string        `env:"GEMINI_API_KEY" yaml:"apiKey"`
		Endpoint    string        `env:"GEMINI_ENDPOINT" env-default:"https://generativelanguage.googleapis.com/v1beta" yaml:"endpoint"` //nolint: lll
		Model       string        `env:"GEMINI_MODEL" env-default:"gemini-2.0-flash" yaml:"model"`
		Temperature float64       `env:"GEMINI_TEMPERATURE" env-default:"0.2" yaml:"temperature"`
		Timeout     time.Duration `env:"GEMINI_TIMEOUT" env-default:"60s" yaml:"timeout"`
		// RequestsPerSecond paces calls per process; 0 disables pacing
		RequestsPerSecond float64 `env:"GEMINI_REQUESTS_PER_SECOND" env-default:"0" yaml:"requestsPerSecond"`
		Burst             int     `env:"GEMINI_BURST" env-default:"1" yaml:"burst"`
	} `yaml:"gemini"`

	Analyzer struct {
		// NoMatchJudgment is the overall judgment when search finds nothing (○, △, × or ?)
		NoMatchJudgment string `env:"ANALYZER_NO_MATCH_JUDGMENT" env-default:"?" yaml:"noMatchJudgment"`
		// FailureJudgment is the overall judgment of items that fail
		FailureJudgment string `env:"ANALYZER_FAILURE_JUDGMENT" env-default:"?" yaml:"failureJudgment"`
		// MaxConcurrentCalls bounds outbound calls per item; 0 means unbounded
		MaxConcurrentCalls int  `env:"ANALYZER_MAX_CONCURRENT_CALLS" env-default:"0" yaml:"maxConcurrentCalls"`
		CompareImages      bool `env:"ANALYZER_COMPARE_IMAGES" env-default:"false" yaml:"compareImages"`
		FetchPageText      bool `env:"ANALYZER_FETCH_PAGE_TEXT" env-default:"true" yaml:"fetchPageText"`
	} `yaml:"analyzer"`

	Domains struct {
		// ListsFile is a YAML file with domain lists; the built-in lists are used when empty
		ListsFile string `env:"DOMAINS_LISTS_FILE" yaml:"listsFile"`
	} `yaml:"domains"`

	Media struct {
		MaxUploadBytes int64  `env:"MEDIA_MAX_UPLOAD_BYTES" env-default:"20971520" yaml:"maxUploadBytes"`
		PdftoppmPath   string `env:"MEDIA_PDFTOPPM_PATH" env-default:"pdftoppm" yaml:"pdftoppmPath"`
		PDFDPI         int    `env:"MEDIA_PDF_DPI" env-default:"150" yaml:"pdfDPI"`
		MaxPDFPages    int    `env:"MEDIA_MAX_PDF_PAGES" env-default:"1" yaml:"maxPDFPages"`
	} `yaml:"media"`

	PageText struct {
		Timeout   time.Duration `env:"PAGE_TEXT_TIMEOUT" env-default:"15s" yaml:"timeout"`
		MaxBytes  int64         `env:"PAGE_TEXT_MAX_BYTES" env-default:"4194304" yaml:"maxBytes"`
		MaxChars  int           `env:"PAGE_TEXT_MAX_CHARS" env-default:"6000" yaml:"maxChars"`
		UserAgent string        `env:"PAGE_TEXT_USER_AGENT" yaml:"userAgent"`
	} `yaml:"pageText"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
func Load(configPath string) (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("could not read config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadEnv fills a Config from defaults and environment variables only.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("could not read config from env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects values that cleanenv cannot check by type alone.
func (c *Config) Validate() error {
	var errs []error
	if _, ok := domain.ParseJudgment(c.Analyzer.NoMatchJudgment); !ok {
		errs = append(errs, fmt.Errorf("analyzer.noMatchJudgment: unknown judgment %q", c.Analyzer.NoMatchJudgment))
	}
	if _, ok := domain.ParseJudgment(c.Analyzer.FailureJudgment); !ok {
		errs = append(errs, fmt.Errorf("analyzer.failureJudgment: unknown judgment %q", c.Analyzer.FailureJudgment))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}
