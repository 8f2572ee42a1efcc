package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for consistency. All problems are
// reported at once, joined into a single error.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be positive, got %d", c.Server.MaxBodySize))
	}
	if c.Server.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_upload_size must be positive, got %d", c.Server.MaxUploadSize))
	}

	if c.OpenAI.APIKey == "" {
		errs = append(errs, errors.New("openai.api_key is required (set api_key, api_key_file, or the OPENAI_API_KEY environment variable)"))
	}
	if c.OpenAI.EmbedModel == "" {
		errs = append(errs, errors.New("openai.embed_model must not be empty"))
	}
	if c.OpenAI.ChatModel == "" {
		errs = append(errs, errors.New("openai.chat_model must not be empty"))
	}
	if c.OpenAI.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("openai.embed_batch_size must be positive, got %d", c.OpenAI.EmbedBatchSize))
	}
	if c.OpenAI.Temperature < 0 || c.OpenAI.Temperature > 2 {
		errs = append(errs, fmt.Errorf("openai.temperature must be between 0 and 2, got %g", c.OpenAI.Temperature))
	}

	if c.Chunking.Tokens <= 0 {
		errs = append(errs, fmt.Errorf("chunking.tokens must be positive, got %d", c.Chunking.Tokens))
	}
	if c.Chunking.Overlap < 0 {
		errs = append(errs, fmt.Errorf("chunking.overlap must not be negative, got %d", c.Chunking.Overlap))
	}
	if c.Chunking.Encoding == "" {
		errs = append(errs, errors.New("chunking.encoding must not be empty"))
	}

	if c.Retrieval.TopK <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK))
	}
	if c.Retrieval.PreviewChars <= 0 {
		errs = append(errs, fmt.Errorf("retrieval.preview_chars must be positive, got %d", c.Retrieval.PreviewChars))
	}

	if c.MCP.Enabled && !strings.HasPrefix(c.MCP.Path, "/") {
		errs = append(errs, fmt.Errorf("mcp.path must start with /, got %q", c.MCP.Path))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}

	return errors.Join(errs...)
}
