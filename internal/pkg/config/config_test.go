package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreFile, cfg.StoreDriver)
	assert.Equal(t, "data/leads.json", cfg.DataFile)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9091", cfg.MetricsAddr)
	assert.Equal(t, []string{"email", "linkedin"}, cfg.PIIRedactionFields)
	assert.Equal(t, int64(5242880), cfg.MaxUploadBytes)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.CreateRatePerMinute)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.EventsEnabled)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("REQUEST_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreSQLite, cfg.StoreDriver)
	assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.EventsEnabled)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout)
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TRUSTED_PROXIES", "10.1.2.3/8, 192.168.0.1,::1")

	cfg, err := Load()
	require.NoError(t, err)

	prefixes, err := cfg.TrustedProxyPrefixes()
	require.NoError(t, err)
	require.Len(t, prefixes, 3)
	assert.Equal(t, "10.0.0.0/8", prefixes[0].String())
	assert.Equal(t, "192.168.0.1/32", prefixes[1].String())
	assert.Equal(t, "::1/128", prefixes[2].String())
}

func TestLoad_RejectsInvalidTrustedProxy(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("TRUSTED_PROXIES", "not-an-ip")

	_, err := Load()
	assert.ErrorContains(t, err, "not-an-ip")
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			StoreDriver:         StoreFile,
			ResumeDriver:        ResumeFS,
			MaxUploadBytes:      1,
			CreateRatePerMinute: 1,
			CreateRateBurst:     1,
			JWTTTL:              time.Hour,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown store", func(c *Config) { c.StoreDriver = "mongo" }, "STORE_DRIVER"},
		{"postgres without url", func(c *Config) { c.StoreDriver = StorePostgres }, "POSTGRES_URL"},
		{"unknown resume driver", func(c *Config) { c.ResumeDriver = "ftp" }, "RESUME_DRIVER"},
		{"s3 without bucket", func(c *Config) { c.ResumeDriver = ResumeS3 }, "S3_BUCKET"},
		{"zero upload size", func(c *Config) { c.MaxUploadBytes = 0 }, "MAX_UPLOAD_BYTES"},
		{"zero rate", func(c *Config) { c.CreateRateBurst = 0 }, "CREATE_RATE"},
		{"zero ttl", func(c *Config) { c.JWTTTL = 0 }, "JWT_TTL"},
		{"bad trusted proxy", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/8", "gateway"} }, "TRUSTED_PROXIES"},
		{"bad trusted cidr", func(c *Config) { c.TrustedProxies = []string{"10.0.0.0/40"} }, "TRUSTED_PROXIES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
