package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetGlobalConfigDir(t *testing.T) {
	dir := GetGlobalConfigDir()

	// Should be in home directory
	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatalf("failed to get home dir: %v", err)
	}

	expected := filepath.Join(home, ".clear-ai")
	if dir != expected {
		t.Errorf("expected %s, got %s", expected, dir)
	}
}

func TestEnsureGlobalConfigDir(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	err := EnsureGlobalConfigDir()
	if err != nil {
		t.Fatalf("failed to ensure global config dir: %v", err)
	}

	expectedDir := filepath.Join(tempHome, ".clear-ai")
	if _, err := os.Stat(expectedDir); os.IsNotExist(err) {
		t.Errorf("global config directory was not created at %s", expectedDir)
	}
}

func TestLoadGlobalConfig_WithValidFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configDir := filepath.Join(tempHome, ".clear-ai")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configPath := filepath.Join(configDir, "config")
	content := `NEO4J_URI=neo4j://test:7687
NEO4J_USERNAME=testuser
NEO4J_PASSWORD=testpass
NEO4J_DATABASE=testdb
OPENAI_API_KEY=sk-global
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("failed to load global config: %v", err)
	}

	if cfg.Neo4jURI != "neo4j://test:7687" {
		t.Errorf("expected neo4j://test:7687, got %s", cfg.Neo4jURI)
	}
	if cfg.Neo4jUsername != "testuser" {
		t.Errorf("expected testuser, got %s", cfg.Neo4jUsername)
	}
	if cfg.Neo4jPassword != "testpass" {
		t.Errorf("expected testpass, got %s", cfg.Neo4jPassword)
	}
	if cfg.OpenAIKey != "sk-global" {
		t.Errorf("expected sk-global, got %s", cfg.OpenAIKey)
	}
}

func TestLoadGlobalConfig_WithMissingFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("NEO4J_PASSWORD", "")
	t.Setenv("OPENAI_API_KEY", "")

	// File doesn't exist, defaults alone fail validation
	cfg, err := LoadGlobalConfig()
	if err == nil {
		t.Error("expected error for missing password, got nil")
	}

	if cfg == nil {
		t.Error("expected config struct even with error, got nil")
	}
}

func TestSetGlobalConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	if err := SetGlobalConfig("NEO4J_PASSWORD", "newsecret"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}
	if err := SetGlobalConfig("MOCK_EMBEDDINGS", "true"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("failed to load global config after set: %v", err)
	}

	if cfg.Neo4jPassword != "newsecret" {
		t.Errorf("expected newsecret, got %s", cfg.Neo4jPassword)
	}
}

func TestGetGlobalConfig(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	if err := SetGlobalConfig("NEO4J_URI", "neo4j://global:7687"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}

	value, err := GetGlobalConfig("NEO4J_URI")
	if err != nil {
		t.Fatalf("failed to get global config: %v", err)
	}

	if value != "neo4j://global:7687" {
		t.Errorf("expected neo4j://global:7687, got %s", value)
	}
}

func TestGetGlobalConfig_NonExistentKey(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	if err := SetGlobalConfig("SOME_KEY", "value"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}

	_, err := GetGlobalConfig("DOES_NOT_EXIST")
	if err == nil {
		t.Error("expected error for non-existent key, got nil")
	}
}

func TestLoadWithGlobalFallback(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	// Secrets live in the global config
	if err := SetGlobalConfig("NEO4J_PASSWORD", "globalpass"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}
	if err := SetGlobalConfig("OPENAI_API_KEY", "sk-global"); err != nil {
		t.Fatalf("failed to set global config: %v", err)
	}

	// Local .env overrides the URI only
	localDir := t.TempDir()
	localContent := `NEO4J_URI=neo4j://local:7687`
	if err := os.WriteFile(filepath.Join(localDir, ".env"), []byte(localContent), 0644); err != nil {
		t.Fatalf("failed to write local config: %v", err)
	}

	cfg, err := Load(localDir)
	if err != nil {
		t.Fatalf("failed to load config with global fallback: %v", err)
	}

	if cfg.Neo4jURI != "neo4j://local:7687" {
		t.Errorf("expected local URI, got %s", cfg.Neo4jURI)
	}
	if cfg.Neo4jPassword != "globalpass" {
		t.Errorf("expected global password, got %s", cfg.Neo4jPassword)
	}
	if cfg.OpenAIKey != "sk-global" {
		t.Errorf("expected global OpenAI key, got %s", cfg.OpenAIKey)
	}
}
