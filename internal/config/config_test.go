package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		DatabaseURL:       "postgres://localhost/omnipair",
		UpstreamAPIKey:    "key",
		GRPCPort:          50051,
		WebsocketPort:     8081,
		HealthPort:        9090,
		DedupTimeoutSecs:  5,
		DedupTickSecs:     1,
		BroadcastCapacity: 100,
	}
}

func TestValidate_AcceptsCompleteConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_RequiresDatabaseURL(t *testing.T) {
	cfg := validConfig()
	cfg.DatabaseURL = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "DATABASE_URL") {
		t.Fatalf("expected DATABASE_URL error, got %v", err)
	}
}

func TestValidate_RequiresUpstreamKey(t *testing.T) {
	cfg := validConfig()
	cfg.UpstreamAPIKey = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "UPSTREAM_API_KEY") {
		t.Fatalf("expected UPSTREAM_API_KEY error, got %v", err)
	}
}

func TestValidate_RejectsOutOfRangePort(t *testing.T) {
	cfg := validConfig()
	cfg.GRPCPort = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected port range error")
	}
}

func TestValidate_ZeroPortDisablesServer(t *testing.T) {
	cfg := validConfig()
	cfg.GRPCPort = 0
	cfg.WebsocketPort = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero ports must be accepted: %v", err)
	}
}

func TestProduction_MatchesNodeEnv(t *testing.T) {
	cfg := validConfig()
	if cfg.Production() {
		t.Fatal("empty NODE_ENV must not be production")
	}
	cfg.NodeEnv = "production"
	if !cfg.Production() {
		t.Fatal("NODE_ENV=production not detected")
	}
}

func TestLoad_FailsWithoutRequiredEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("UPSTREAM_API_KEY", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load must fail without required settings")
	}
}

func TestLoad_ParsesEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/omnipair")
	t.Setenv("UPSTREAM_API_KEY", "key")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MAX_LAG_THRESHOLD", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.ProgramID != DefaultProgramID {
		t.Fatalf("default program id = %s", cfg.ProgramID)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Fatalf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.MaxLagThreshold != 50 {
		t.Fatalf("lag threshold = %d", cfg.MaxLagThreshold)
	}
}
