package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.env"), []byte(body), 0o600))
	return dir
}

func TestLoad_FileAndDefaults(t *testing.T) {
	dir := writeEnvFile(t, "DSN=postgres://localhost/market\nTICKET_SECRET=s3cret\nMIDTRANS_PRODUCTION=true\n")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/market", cfg.DSN)
	assert.Equal(t, "s3cret", cfg.TicketSecret)
	assert.True(t, cfg.MidtransProduction)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverSupabase, cfg.IdentityProvider)
	assert.Equal(t, DriverPostgres, cfg.ProceduresDriver)
	assert.Equal(t, DriverMemory, cfg.RealtimeDriver)
	assert.InDelta(t, 5.0, cfg.RateLimitRPS, 0.001)
	assert.Equal(t, 10, cfg.RateLimitBurst)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := writeEnvFile(t, "PORT=8080\n")
	t.Setenv("PORT", "9090")
	t.Setenv("REALTIME_DRIVER", "redis")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, DriverRedis, cfg.RealtimeDriver)
}

func TestLoad_MissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
}

func validConfig() *Config {
	return &Config{
		DSN:               "postgres://localhost/market",
		TicketSecret:      "secret",
		IdentityProvider:  DriverSupabase,
		StorageDriver:     DriverSupabase,
		ProceduresDriver:  DriverPostgres,
		PaymentProvider:   DriverMidtrans,
		RealtimeDriver:    DriverMemory,
		SupabaseURL:       "https://abc.supabase.co",
		SupabaseKey:       "key",
		MidtransServerKey: "SB-Mid-server",
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing dsn",
			mutate:  func(c *Config) { c.DSN = "" },
			wantErr: "DSN",
		},
		{
			name:    "local identity needs jwt secret",
			mutate:  func(c *Config) { c.IdentityProvider = DriverLocal },
			wantErr: "JWT_SECRET",
		},
		{
			name:    "s3 needs credentials",
			mutate:  func(c *Config) { c.StorageDriver = DriverS3 },
			wantErr: "S3_ACCESS_KEY_ID",
		},
		{
			name:    "redis realtime needs url",
			mutate:  func(c *Config) { c.RealtimeDriver = DriverRedis },
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown payment provider",
			mutate:  func(c *Config) { c.PaymentProvider = "paypal" },
			wantErr: "unknown PAYMENT_PROVIDER",
		},
		{
			name: "supabase keys reported once",
			mutate: func(c *Config) {
				c.SupabaseURL = ""
				c.ProceduresDriver = DriverSupabase
			},
			wantErr: "missing required config: SUPABASE_URL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSOrigins: "http://a.test, ,http://b.test"}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins())
}
