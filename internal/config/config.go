package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds everything loaded from config.env and the environment.
type Config struct {
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	DSN       string `mapstructure:"DSN"`
	JWTSecret string `mapstructure:"JWT_SECRET"`

	IdentityProvider string `mapstructure:"IDENTITY_PROVIDER"`
	StorageDriver    string `mapstructure:"STORAGE_DRIVER"`
	ProceduresDriver string `mapstructure:"PROCEDURES_DRIVER"`
	PaymentProvider  string `mapstructure:"PAYMENT_PROVIDER"`
	RealtimeDriver   string `mapstructure:"REALTIME_DRIVER"`

	SupabaseURL string `mapstructure:"SUPABASE_URL"`
	SupabaseKey string `mapstructure:"SUPABASE_KEY"`

	MidtransServerKey  string `mapstructure:"MIDTRANS_SERVER_KEY"`
	MidtransProduction bool   `mapstructure:"MIDTRANS_PRODUCTION"`

	S3Endpoint      string `mapstructure:"S3_ENDPOINT"`
	S3Region        string `mapstructure:"S3_REGION"`
	S3AccessKeyID   string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretKey     string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3BucketPrefix  string `mapstructure:"S3_BUCKET_PREFIX"`
	S3PublicBaseURL string `mapstructure:"S3_PUBLIC_BASE_URL"`

	RedisURL string `mapstructure:"REDIS_URL"`

	PublicBaseURL  string  `mapstructure:"PUBLIC_BASE_URL"`
	TicketSecret   string  `mapstructure:"TICKET_SECRET"`
	CORSOrigins    string  `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`
}

const (
	DriverSupabase = "supabase"
	DriverLocal    = "local"
	DriverPostgres = "postgres"
	DriverS3       = "s3"
	DriverMidtrans = "midtrans"
	DriverEdge     = "edge"
	DriverMemory   = "memory"
	DriverRedis    = "redis"
)

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "DSN", "JWT_SECRET",
	"IDENTITY_PROVIDER", "STORAGE_DRIVER", "PROCEDURES_DRIVER", "PAYMENT_PROVIDER", "REALTIME_DRIVER",
	"SUPABASE_URL", "SUPABASE_KEY", "MIDTRANS_SERVER_KEY", "MIDTRANS_PRODUCTION",
	"S3_ENDPOINT", "S3_REGION", "S3_ACCESS_KEY_ID", "S3_SECRET_ACCESS_KEY", "S3_BUCKET_PREFIX", "S3_PUBLIC_BASE_URL",
	"REDIS_URL", "PUBLIC_BASE_URL", "TICKET_SECRET", "CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// Load reads the config.env file from path (if present) and overlays the
// environment.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("IDENTITY_PROVIDER", DriverSupabase)
	v.SetDefault("STORAGE_DRIVER", DriverSupabase)
	v.SetDefault("PROCEDURES_DRIVER", DriverPostgres)
	v.SetDefault("PAYMENT_PROVIDER", DriverMidtrans)
	v.SetDefault("REALTIME_DRIVER", DriverMemory)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:5173")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	// AutomaticEnv only answers Get for keys viper already knows about, so
	// Unmarshal needs every key bound.
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the keys required by the selected drivers.
func (c *Config) Validate() error {
	var missing []string
	need := func(key, val string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, key)
		}
	}

	need("DSN", c.DSN)
	need("TICKET_SECRET", c.TicketSecret)

	switch c.IdentityProvider {
	case DriverSupabase:
		need("SUPABASE_URL", c.SupabaseURL)
		need("SUPABASE_KEY", c.SupabaseKey)
	case DriverLocal:
		need("JWT_SECRET", c.JWTSecret)
	default:
		return fmt.Errorf("unknown IDENTITY_PROVIDER %q", c.IdentityProvider)
	}

	switch c.StorageDriver {
	case DriverSupabase:
		need("SUPABASE_URL", c.SupabaseURL)
		need("SUPABASE_KEY", c.SupabaseKey)
	case DriverS3:
		need("S3_ACCESS_KEY_ID", c.S3AccessKeyID)
		need("S3_SECRET_ACCESS_KEY", c.S3SecretKey)
		need("S3_PUBLIC_BASE_URL", c.S3PublicBaseURL)
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.ProceduresDriver {
	case DriverPostgres:
	case DriverSupabase:
		need("SUPABASE_URL", c.SupabaseURL)
		need("SUPABASE_KEY", c.SupabaseKey)
	default:
		return fmt.Errorf("unknown PROCEDURES_DRIVER %q", c.ProceduresDriver)
	}

	switch c.PaymentProvider {
	case DriverMidtrans:
		need("MIDTRANS_SERVER_KEY", c.MidtransServerKey)
	case DriverEdge:
		need("SUPABASE_URL", c.SupabaseURL)
		need("SUPABASE_KEY", c.SupabaseKey)
	default:
		return fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider)
	}

	switch c.RealtimeDriver {
	case DriverMemory:
	case DriverRedis:
		need("REDIS_URL", c.RedisURL)
	default:
		return fmt.Errorf("unknown REALTIME_DRIVER %q", c.RealtimeDriver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(dedupe(missing), ", "))
	}
	return nil
}

// IsProduction reports whether ENV selects production behaviour.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// AllowedOrigins splits CORS_ORIGINS on commas.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
