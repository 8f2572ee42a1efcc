// Package config loads, validates, and provides access to auskunft
// configuration from YAML files and environment variables.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for the auskunft service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	MCP       MCPConfig       `yaml:"mcp"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Debug     DebugConfig     `yaml:"debug"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host          string        `yaml:"host"`
	Port          int           `yaml:"port"`
	ReadTimeout   time.Duration `yaml:"read_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	MaxBodySize   int64         `yaml:"max_body_size"`
	MaxUploadSize int64         `yaml:"max_upload_size"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// OpenAIConfig holds settings for the OpenAI-compatible backend used
// for embeddings and chat completions.
type OpenAIConfig struct {
	// APIKey authenticates against the backend. Required unless
	// APIKeyFile or the OPENAI_API_KEY environment variable is set.
	APIKey string `yaml:"api_key"`

	// APIKeyFile reads the API key from a file (e.g. a mounted secret).
	// If both are set, APIKey wins.
	APIKeyFile string `yaml:"api_key_file"`

	// BaseURL overrides the backend endpoint. Must include the /v1
	// suffix, e.g. "http://localhost:9090/v1". Empty means the
	// official OpenAI API.
	BaseURL string `yaml:"base_url"`

	EmbedModel     string        `yaml:"embed_model"`
	ChatModel      string        `yaml:"chat_model"`
	EmbedBatchSize int           `yaml:"embed_batch_size"`
	Temperature    float32       `yaml:"temperature"`
	Timeout        time.Duration `yaml:"timeout"`
}

// ChunkingConfig controls how ingested documents are split before
// embedding.
type ChunkingConfig struct {
	// Tokens is the chunk window size in tokens.
	Tokens int `yaml:"tokens"`

	// Overlap is how many tokens consecutive chunks share. Values at
	// or above Tokens are allowed; the chunker floors its stride at
	// one token.
	Overlap int `yaml:"overlap"`

	// Encoding names the tokenizer, e.g. "cl100k_base".
	Encoding string `yaml:"encoding"`
}

// RetrievalConfig controls answer retrieval.
type RetrievalConfig struct {
	// TopK is the default number of chunks retrieved per question.
	TopK int `yaml:"top_k"`

	// PreviewChars bounds the source preview length in the answer.
	PreviewChars int `yaml:"preview_chars"`
}

// MCPConfig controls the Model Context Protocol endpoint.
type MCPConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// DebugConfig controls debug logging categories.
type DebugConfig struct {
	// Categories lists enabled debug categories, or "all".
	Categories []string `yaml:"categories"`

	// Level is the base slog level, e.g. "INFO" or "DEBUG".
	Level string `yaml:"level"`
}

// Defaults returns a Config with default values.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "",
			Port:          8080,
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  120 * time.Second,
			MaxBodySize:   1 << 20,
			MaxUploadSize: 64 << 20,
		},
		OpenAI: OpenAIConfig{
			EmbedModel:     "text-embedding-3-large",
			ChatModel:      "gpt-4.1",
			EmbedBatchSize: 1000,
			Temperature:    0.2,
			Timeout:        120 * time.Second,
		},
		Chunking: ChunkingConfig{
			Tokens:   400,
			Overlap:  60,
			Encoding: "cl100k_base",
		},
		Retrieval: RetrievalConfig{
			TopK:         6,
			PreviewChars: 300,
		},
		MCP: MCPConfig{
			Enabled: true,
			Path:    "/mcp",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}
