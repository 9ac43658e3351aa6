package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	RPCURL       string
	Transport    string
	SSEAddr      string
	AuditOut     string
	PostgresDSN  string
	MaxRetries   int
	RetryBackoff time.Duration
	LogLevel     string
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.RPCURL == "" {
		return fmt.Errorf("rpc endpoint is required")
	}
	switch c.Transport {
	case "stdio", "sse":
	default:
		return fmt.Errorf("unknown transport %q (want stdio or sse)", c.Transport)
	}
	return nil
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TRADINGTOOLS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("rpc", "https://eth.llamarpc.com")
	v.SetDefault("transport", "stdio")
	v.SetDefault("sse-addr", ":8080")
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 500*time.Millisecond)
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		RPCURL:       v.GetString("rpc"),
		Transport:    v.GetString("transport"),
		SSEAddr:      v.GetString("sse-addr"),
		AuditOut:     v.GetString("audit-out"),
		PostgresDSN:  v.GetString("pg-dsn"),
		MaxRetries:   v.GetInt("max-retries"),
		RetryBackoff: v.GetDuration("retry-backoff"),
		LogLevel:     v.GetString("log-level"),
	}

	return cfg, nil
}
