package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds application configuration.
type Config struct {
	StorageBackend  string `validate:"oneof=memory postgres"`
	DatabaseURL     string `validate:"required_if=StorageBackend postgres"`
	RunMigrations   bool
	DBMaxConns      int32  `validate:"gte=0"`
	RedisAddr       string `validate:"omitempty,hostname_port"`
	RedisKey        string `validate:"required_with=RedisAddr"`
	Port            string `validate:"required,numeric"`
	TCPAddr         string `validate:"omitempty,hostname_port"`
	IsProduction    bool
	LogLevel        slog.Level
	ShutdownTimeout time.Duration `validate:"gt=0"`
	RateLimit       string        `validate:"required"`
	CORSOrigins     []string

	BloomExpectedTx uint    `validate:"gte=0"`
	BloomFPRate     float64 `validate:"gt=0,lt=1"`

	BreakerTimeout     time.Duration `validate:"gte=0"`
	BreakerMaxFailures uint32        `validate:"gt=0"`
	BreakerOpenTimeout time.Duration `validate:"gt=0"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"storage":        "STORAGE_BACKEND",
	"pgsql-url":      "PGSQL_URL",
	"run-migrations": "RUN_MIGRATIONS",
	"redis-addr":     "REDIS_ADDR",
	"port":           "PORT",
	"tcp-addr":       "TCP_ADDR",
	"log-level":      "LOG_LEVEL",
}

// RegisterFlags adds the command-line overrides understood by LoadConfig.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("storage", "", "storage backend: memory or postgres")
	fs.String("pgsql-url", "", "PostgreSQL connection URL")
	fs.Bool("run-migrations", false, "apply database migrations on start-up")
	fs.String("redis-addr", "", "mirror accounts to this Redis server")
	fs.String("port", "", "HTTP listen port")
	fs.String("tcp-addr", "", "TCP listen address for CSV streams")
	fs.String("log-level", "", "debug, info, warn or error")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("STORAGE_BACKEND", StorageMemory)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("DB_MAX_CONNS", 0)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_KEY", "ledger:accounts")
	v.SetDefault("PORT", "8080")
	v.SetDefault("TCP_ADDR", ":7070")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("RATE_LIMIT", "60-M")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BLOOM_EXPECTED_TX", 1_000_000)
	v.SetDefault("BLOOM_FP_RATE", 0.01)
	v.SetDefault("BREAKER_TIMEOUT", "5s")
	v.SetDefault("BREAKER_MAX_FAILURES", 5)
	v.SetDefault("BREAKER_OPEN_TIMEOUT", "30s")
}

// LoadConfig loads configuration from defaults, a .env file if present,
// environment variables and finally any flags in fs that were set.
func LoadConfig(fs *pflag.FlagSet) (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if fs != nil {
		for name, key := range flagKeys {
			if f := fs.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		StorageBackend:     strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DatabaseURL:        v.GetString("PGSQL_URL"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		DBMaxConns:         v.GetInt32("DB_MAX_CONNS"),
		RedisAddr:          v.GetString("REDIS_ADDR"),
		RedisKey:           v.GetString("REDIS_KEY"),
		Port:               v.GetString("PORT"),
		TCPAddr:            v.GetString("TCP_ADDR"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		ShutdownTimeout:    v.GetDuration("SHUTDOWN_TIMEOUT"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		CORSOrigins:        splitList(v.GetString("CORS_ORIGINS")),
		BloomExpectedTx:    v.GetUint("BLOOM_EXPECTED_TX"),
		BloomFPRate:        v.GetFloat64("BLOOM_FP_RATE"),
		BreakerTimeout:     v.GetDuration("BREAKER_TIMEOUT"),
		BreakerMaxFailures: v.GetUint32("BREAKER_MAX_FAILURES"),
		BreakerOpenTimeout: v.GetDuration("BREAKER_OPEN_TIMEOUT"),
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("LOG_LEVEL"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
