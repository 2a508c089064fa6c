// Package config reads runtime settings from the environment.
package config

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"ratchetkit/internal/domain"
)

type Config struct {
	Home      string
	LogLevel  string
	LogFormat string
	Policy    domain.Policy
}

// Load reads RATCHETKIT_* variables over the defaults. Invalid numbers are
// logged and replaced by the default.
func Load() Config {
	def := domain.DefaultPolicy()
	return Config{
		Home:      envOr("RATCHETKIT_HOME", defaultHome()),
		LogLevel:  envOr("RATCHETKIT_LOG_LEVEL", "info"),
		LogFormat: envOr("RATCHETKIT_LOG_FORMAT", "text"),
		Policy: domain.Policy{
			MaxSkippedMessageKeys: envInt("RATCHETKIT_MAX_SKIPPED_KEYS", def.MaxSkippedMessageKeys),
			MaxMessageGap:         envUint32("RATCHETKIT_MAX_MESSAGE_GAP", def.MaxMessageGap),
			MaxReceiverChains:     envInt("RATCHETKIT_MAX_RECEIVER_CHAINS", def.MaxReceiverChains),
			MaxOneTimeKeys:        envInt("RATCHETKIT_MAX_ONE_TIME_KEYS", def.MaxOneTimeKeys),
		},
	}
}

func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ratchetkit"
	}
	return filepath.Join(home, ".ratchetkit")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			return n
		}
		slog.Warn("config: invalid int, using default", "key", key, "value", v, "default", fallback)
	}
	return fallback
}

func envUint32(key string, fallback uint32) uint32 {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err == nil && n > 0 && n <= math.MaxUint32 {
			return uint32(n)
		}
		slog.Warn("config: invalid uint32, using default", "key", key, "value", v, "default", fallback)
	}
	return fallback
}
