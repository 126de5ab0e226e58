package config

import (
	"errors"
	"fmt"
	"net/netip"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	StoreFile     = "file"
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreRedis    = "redis"

	ResumeFS = "fs"
	ResumeS3 = "s3"
)

var (
	storeDrivers  = []string{StoreFile, StoreMemory, StorePostgres, StoreSQLite, StoreRedis}
	resumeDrivers = []string{ResumeFS, ResumeS3}
)

// Config holds all application configuration.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"METRICS_ADDR" envDefault:":9091"`

	StoreDriver        string `env:"STORE_DRIVER" envDefault:"file"`
	DataFile           string `env:"DATA_FILE" envDefault:"data/leads.json"`
	SeedFile           string `env:"SEED_FILE"`
	PostgresURL        string `env:"POSTGRES_URL"`
	SQLitePath         string `env:"SQLITE_PATH" envDefault:"data/leads.db"`
	RedisURL           string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	RedisCollectionKey string `env:"REDIS_COLLECTION_KEY" envDefault:"leads:collection"`

	EventsEnabled      bool     `env:"EVENTS_ENABLED" envDefault:"false"`
	EventsStream       string   `env:"EVENTS_STREAM" envDefault:"lead_events"`
	EventsMaxLen       int64    `env:"EVENTS_MAX_LEN" envDefault:"10000"`
	PIIRedactionFields []string `env:"PII_REDACTION_FIELDS" envDefault:"email,linkedin" envSeparator:","`

	ResumeDriver      string `env:"RESUME_DRIVER" envDefault:"fs"`
	UploadDir         string `env:"UPLOAD_DIR" envDefault:"public/uploads"`
	UploadURLPrefix   string `env:"UPLOAD_URL_PREFIX" envDefault:"/uploads"`
	MaxUploadBytes    int64  `env:"MAX_UPLOAD_BYTES" envDefault:"5242880"` // 5MB
	S3Bucket          string `env:"S3_BUCKET"`
	S3Region          string `env:"S3_REGION" envDefault:"us-east-1"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3PathStyle       bool   `env:"S3_PATH_STYLE" envDefault:"false"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`

	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	CreateRatePerMinute int      `env:"CREATE_RATE_PER_MINUTE" envDefault:"10"`
	CreateRateBurst     int      `env:"CREATE_RATE_BURST" envDefault:"5"`
	CORSAllowedOrigins  []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
	// Peers allowed to set X-Forwarded-For. IPs or CIDRs.
	TrustedProxies []string `env:"TRUSTED_PROXIES" envSeparator:","`

	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if !slices.Contains(storeDrivers, c.StoreDriver) {
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be one of %v, got %q", storeDrivers, c.StoreDriver))
	}
	if c.StoreDriver == StorePostgres && c.PostgresURL == "" {
		errs = append(errs, errors.New("POSTGRES_URL is required when STORE_DRIVER=postgres"))
	}
	if !slices.Contains(resumeDrivers, c.ResumeDriver) {
		errs = append(errs, fmt.Errorf("RESUME_DRIVER must be one of %v, got %q", resumeDrivers, c.ResumeDriver))
	}
	if c.ResumeDriver == ResumeS3 && c.S3Bucket == "" {
		errs = append(errs, errors.New("S3_BUCKET is required when RESUME_DRIVER=s3"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", c.MaxUploadBytes))
	}
	if c.CreateRatePerMinute <= 0 || c.CreateRateBurst <= 0 {
		errs = append(errs, errors.New("CREATE_RATE_PER_MINUTE and CREATE_RATE_BURST must be positive"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL))
	}
	if _, err := c.TrustedProxyPrefixes(); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	return errors.Join(errs...)
}

// TrustedProxyPrefixes parses TrustedProxies. A bare address becomes a
// single-host prefix.
func (c *Config) TrustedProxyPrefixes() ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(c.TrustedProxies))
	for _, raw := range c.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			p, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy %q: %w", raw, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}
