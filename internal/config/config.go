// Package config manages application configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/wsyeabsera/clear-ai-sub006/internal/memory"
)

// Config holds the application configuration.
type Config struct {
	Neo4jURI      string
	Neo4jUsername string
	Neo4jPassword string
	Neo4jDatabase string
	Neo4jImage    string
	ContainerName string

	OpenAIKey           string
	OpenAIBaseURL       string
	EmbeddingModel      string
	EmbeddingDimensions int
	MockEmbeddings      bool

	AnthropicKey    string
	ExtractionModel string

	// VectorDataPath, when set, makes the vector index persist to disk
	// instead of living purely in memory.
	VectorDataPath string

	SearchThreshold float64
	MergeThreshold  float64
	RecencyWeight   float64
	SemanticWeight  float64
	RecencyDecay    time.Duration
	ExtractionBatch int
}

// Load reads configuration from a .env file in the specified directory.
// If the .env file doesn't exist, it falls back to global config (~/.clear-ai/config),
// then to environment variables and defaults.
func Load(dir string) (*Config, error) {
	envPath := GetConfigPath(dir)

	// Read local .env file if it exists
	localEnvMap, err := godotenv.Read(envPath)
	if err != nil {
		// If file doesn't exist, use empty map
		localEnvMap = make(map[string]string)
	}

	// Read global config file
	globalEnvMap, err := godotenv.Read(GetGlobalConfigPath())
	if err != nil {
		// If file doesn't exist, use empty map
		globalEnvMap = make(map[string]string)
	}

	// Helper to get value with precedence: local > global > env > default
	getValueWithFallback := func(key, defaultValue string) string {
		// Check local first
		if value, ok := localEnvMap[key]; ok && value != "" {
			return value
		}
		// Check global
		if value, ok := globalEnvMap[key]; ok && value != "" {
			return value
		}
		// Check environment
		if value := os.Getenv(key); value != "" {
			return value
		}
		// Return default
		return defaultValue
	}

	getValueWithFallbackNoDefault := func(key string) string {
		// Check local first
		if value, ok := localEnvMap[key]; ok && value != "" {
			return value
		}
		// Check global
		if value, ok := globalEnvMap[key]; ok && value != "" {
			return value
		}
		// Check environment
		return os.Getenv(key)
	}

	cfg := &Config{
		Neo4jURI:      getValueWithFallback("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUsername: getValueWithFallback("NEO4J_USERNAME", "neo4j"),
		Neo4jPassword: getValueWithFallbackNoDefault("NEO4J_PASSWORD"),
		Neo4jDatabase: getValueWithFallback("NEO4J_DATABASE", "neo4j"),
		Neo4jImage:    getValueWithFallback("NEO4J_IMAGE", "neo4j:5.25-community"),
		ContainerName: getValueWithFallback("NEO4J_CONTAINER_NAME", "clear-ai-neo4j"),

		OpenAIKey:      getValueWithFallbackNoDefault("OPENAI_API_KEY"),
		OpenAIBaseURL:  getValueWithFallbackNoDefault("OPENAI_BASE_URL"),
		EmbeddingModel: getValueWithFallbackNoDefault("EMBEDDING_MODEL"),

		AnthropicKey:    getValueWithFallbackNoDefault("ANTHROPIC_API_KEY"),
		ExtractionModel: getValueWithFallbackNoDefault("EXTRACTION_MODEL"),

		VectorDataPath: getValueWithFallbackNoDefault("VECTOR_DATA_PATH"),
	}

	cfg.MockEmbeddings = parseBool(getValueWithFallbackNoDefault("MOCK_EMBEDDINGS"))

	numeric := []struct {
		key string
		set func(string) error
	}{
		{"EMBEDDING_DIMENSIONS", func(s string) error {
			n, err := strconv.Atoi(s)
			cfg.EmbeddingDimensions = n
			return err
		}},
		{"SEARCH_THRESHOLD", func(s string) error {
			f, err := strconv.ParseFloat(s, 64)
			cfg.SearchThreshold = f
			return err
		}},
		{"MERGE_THRESHOLD", func(s string) error {
			f, err := strconv.ParseFloat(s, 64)
			cfg.MergeThreshold = f
			return err
		}},
		{"RECENCY_WEIGHT", func(s string) error {
			f, err := strconv.ParseFloat(s, 64)
			cfg.RecencyWeight = f
			return err
		}},
		{"SEMANTIC_WEIGHT", func(s string) error {
			f, err := strconv.ParseFloat(s, 64)
			cfg.SemanticWeight = f
			return err
		}},
		{"RECENCY_DECAY", func(s string) error {
			d, err := time.ParseDuration(s)
			cfg.RecencyDecay = d
			return err
		}},
		{"EXTRACTION_BATCH_SIZE", func(s string) error {
			n, err := strconv.Atoi(s)
			cfg.ExtractionBatch = n
			return err
		}},
	}
	for _, nv := range numeric {
		raw := getValueWithFallbackNoDefault(nv.key)
		if raw == "" {
			continue
		}
		if err := nv.set(raw); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", nv.key, raw)
		}
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	var missing []string

	if c.Neo4jURI == "" {
		missing = append(missing, "NEO4J_URI")
	}
	if c.Neo4jUsername == "" {
		missing = append(missing, "NEO4J_USERNAME")
	}
	if c.Neo4jPassword == "" {
		missing = append(missing, "NEO4J_PASSWORD")
	}
	if c.Neo4jDatabase == "" {
		missing = append(missing, "NEO4J_DATABASE")
	}
	if !c.MockEmbeddings && c.OpenAIKey == "" {
		missing = append(missing, "OPENAI_API_KEY")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration fields: %s", strings.Join(missing, ", "))
	}

	return nil
}

// EngineOptions maps the tunable configuration onto memory engine options.
// Unset values keep the engine defaults.
func (c *Config) EngineOptions() memory.Options {
	opts := memory.DefaultOptions()
	if c.EmbeddingDimensions > 0 {
		opts.Dimensions = c.EmbeddingDimensions
	}
	if c.SearchThreshold > 0 {
		opts.SearchThreshold = float32(c.SearchThreshold)
	}
	if c.MergeThreshold > 0 {
		opts.MergeThreshold = float32(c.MergeThreshold)
	}
	if c.RecencyWeight > 0 || c.SemanticWeight > 0 {
		opts.RecencyWeight = c.RecencyWeight
		opts.SemanticWeight = c.SemanticWeight
	}
	if c.RecencyDecay > 0 {
		opts.RecencyDecay = c.RecencyDecay
	}
	if c.ExtractionBatch > 0 {
		opts.BatchSize = c.ExtractionBatch
	}
	return opts
}

// GetConfigPath returns the full path to the .env file in the given directory.
func GetConfigPath(dir string) string {
	return filepath.Join(dir, ".env")
}

// Set updates or creates a configuration value in the .env file.
func Set(dir, key, value string) error {
	envPath := GetConfigPath(dir)

	// Load existing config
	envMap, err := godotenv.Read(envPath)
	if err != nil {
		// If file doesn't exist, create new map
		envMap = make(map[string]string)
	}

	// Update the value
	envMap[key] = value

	// Write back to file
	return godotenv.Write(envMap, envPath)
}

// Get retrieves a configuration value from the .env file.
func Get(dir, key string) (string, error) {
	envPath := GetConfigPath(dir)

	// Load config
	envMap, err := godotenv.Read(envPath)
	if err != nil {
		return "", fmt.Errorf("failed to read config: %w", err)
	}

	value, ok := envMap[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in configuration", key)
	}

	return value, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

// getValue gets a value from the env map, falling back to system env var.
func getValue(envMap map[string]string, key string) string {
	if value, ok := envMap[key]; ok && value != "" {
		return value
	}
	return os.Getenv(key)
}

// getValueOrDefault gets a value from env map, falling back to system env var, then default.
func getValueOrDefault(envMap map[string]string, key, defaultValue string) string {
	if value, ok := envMap[key]; ok && value != "" {
		return value
	}
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
