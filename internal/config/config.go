// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultProgramID is the mainnet omnipair program.
const DefaultProgramID = "omniSVEL3cY36TYhunvJC6vBXxbJrqrn7JhDrXUTerb"

type Config struct {
	DatabaseURL    string `env:"DATABASE_URL"`
	UpstreamAPIKey string `env:"UPSTREAM_API_KEY"`
	UpstreamURL    string `env:"UPSTREAM_WS_URL" envDefault:"laserstream-mainnet.helius-rpc.com:443"`
	// UpstreamInsecure dials the feed without TLS, for local geyser setups.
	UpstreamInsecure bool   `env:"UPSTREAM_INSECURE"`
	ProgramID        string `env:"PROGRAM_ID" envDefault:"omniSVEL3cY36TYhunvJC6vBXxbJrqrn7JhDrXUTerb"`

	NodeEnv        string   `env:"NODE_ENV" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"https://omnipair.fi,https://legacy.omnipair.fi"`

	// Ports; 0 disables the corresponding server.
	GRPCPort      int `env:"GRPC_PORT" envDefault:"50051"`
	WebsocketPort int `env:"WEBSOCKET_PORT" envDefault:"8081"`
	HealthPort    int `env:"HEALTH_PORT" envDefault:"9090"`

	DedupTimeoutSecs int `env:"DEDUP_TIMEOUT_SECS" envDefault:"5"`
	DedupTickSecs    int `env:"DEDUP_TICK_SECS" envDefault:"1"`

	BroadcastCapacity int    `env:"BROADCAST_CAPACITY" envDefault:"100"`
	MaxLagThreshold   uint64 `env:"MAX_LAG_THRESHOLD" envDefault:"1000"`

	// GuardStalePositions makes borrow-position upserts ignore rows older
	// than the current one, for out-of-order replays.
	GuardStalePositions bool `env:"GUARD_STALE_POSITIONS"`

	WSConnRate  float64 `env:"WS_CONN_RATE"`
	WSConnBurst int     `env:"WS_CONN_BURST" envDefault:"5"`

	// NATSURL enables the relay when set.
	NATSURL     string `env:"NATS_URL"`
	NATSSubject string `env:"NATS_SUBJECT" envDefault:"omnipair.swaps"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads .env if present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.UpstreamAPIKey == "" {
		return errors.New("UPSTREAM_API_KEY is required")
	}
	for name, port := range map[string]int{
		"GRPC_PORT":      c.GRPCPort,
		"WEBSOCKET_PORT": c.WebsocketPort,
		"HEALTH_PORT":    c.HealthPort,
	} {
		if port < 0 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	if c.DedupTimeoutSecs <= 0 || c.DedupTickSecs <= 0 {
		return errors.New("dedup timeout and tick must be positive")
	}
	if c.BroadcastCapacity <= 0 {
		return errors.New("BROADCAST_CAPACITY must be positive")
	}
	return nil
}

// Production reports whether release hardening (restricted CORS, no
// reflection) applies.
func (c *Config) Production() bool {
	return c.NodeEnv == "production"
}
