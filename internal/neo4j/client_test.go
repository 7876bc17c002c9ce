package neo4j

import (
	"testing"
	"time"
)

func TestConfigFromEnv_Defaults(t *testing.T) {
	cfg := ConfigFromEnv()

	if cfg.URI == "" {
		t.Error("URI should have default value")
	}
	if cfg.Username == "" {
		t.Error("Username should have default value")
	}
	if cfg.Password == "" {
		t.Error("Password should have default value")
	}
	if cfg.Database == "" {
		t.Error("Database should have default value")
	}
}

func TestConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("NEO4J_URI", "bolt://db.internal:7687")
	t.Setenv("NEO4J_USERNAME", "svc")
	t.Setenv("NEO4J_PASSWORD", "secret")
	t.Setenv("NEO4J_DATABASE", "memories")

	cfg := ConfigFromEnv()
	if cfg.URI != "bolt://db.internal:7687" {
		t.Errorf("URI = %q", cfg.URI)
	}
	if cfg.Username != "svc" || cfg.Password != "secret" || cfg.Database != "memories" {
		t.Errorf("cfg = %+v, env overrides not applied", cfg)
	}
}

func TestConnectRetryPolicy(t *testing.T) {
	p := ConnectRetryPolicy()

	if p.MaxAttempts != 30 {
		t.Errorf("MaxAttempts = %d, want 30", p.MaxAttempts)
	}
	if p.InitialDelay != 1*time.Second {
		t.Errorf("InitialDelay = %v, want 1s", p.InitialDelay)
	}
	if p.MaxDelay != 10*time.Second {
		t.Errorf("MaxDelay = %v, want 10s", p.MaxDelay)
	}
}
