// Package common provides shared helpers for the ledger binaries:
// YAML configuration loading with flag overrides, logger setup, and
// address parsing with generation fallback for local runs.
package common

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/brandon-salgado205n/DeFi-Builder-Game/crypto"
	"github.com/brandon-salgado205n/DeFi-Builder-Game/services"
)

// Config is the on-disk configuration for ledger binaries.
type Config struct {
	// ListenAddr is the API listen address.
	ListenAddr string `yaml:"listen_addr"`

	// MetricsAddr is the Prometheus listen address. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogJSON switches the logger to JSON output.
	LogJSON bool `yaml:"log_json"`

	// LogDebug enables debug level logging.
	LogDebug bool `yaml:"log_debug"`

	// EnablePprof mounts the pprof API.
	EnablePprof bool `yaml:"enable_pprof"`

	// RequestsPerSecond paces inbound requests. Zero disables pacing.
	RequestsPerSecond int `yaml:"requests_per_second"`

	// Owner is the hex address installed as owner at startup. Empty
	// generates a fresh address and logs it.
	Owner string `yaml:"owner"`

	// IdentitySeed derives the ledger identity bound into decryption
	// fingerprints. Deployments must keep it stable across restarts.
	IdentitySeed string `yaml:"identity_seed"`

	// CooldownSeconds is the initial per-address action cooldown.
	CooldownSeconds int64 `yaml:"cooldown_seconds"`

	// DrainSeconds is the wait after /drain before shutdown proceeds.
	DrainSeconds int64 `yaml:"drain_seconds"`

	// Postgres enables audit event persistence when Host is set.
	Postgres services.PostgresConfig `yaml:"postgres"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:      ":8080",
		IdentitySeed:    "solvency-ledger",
		CooldownSeconds: 60,
		DrainSeconds:    5,
	}
}

// LoadConfig reads a YAML config file, or returns defaults when path is
// empty.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// NewLogger builds the process logger.
func NewLogger(json, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

// LoadOrGenerateAddress parses a hex address, or generates a random one
// if hexAddr is empty.
func LoadOrGenerateAddress(hexAddr string) (crypto.Address, error) {
	if hexAddr != "" {
		return crypto.NewAddressFromString(hexAddr)
	}
	raw := make([]byte, crypto.AddressSize)
	if _, err := rand.Read(raw); err != nil {
		return nil, fmt.Errorf("generating address: %w", err)
	}
	return crypto.NewAddressFromBytes(raw), nil
}

// Cooldown returns the configured cooldown as a duration.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownSeconds) * time.Second
}

// DrainDuration returns the configured drain wait as a duration.
func (c *Config) DrainDuration() time.Duration {
	return time.Duration(c.DrainSeconds) * time.Second
}
