package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/rhuss/auskunft/pkg/api"
	"github.com/rhuss/auskunft/pkg/debug"
	"github.com/rhuss/auskunft/pkg/observability"
	"github.com/rhuss/auskunft/pkg/provider"
)

// Config holds the settings for the OpenAI-backed provider.
type Config struct {
	// APIKey authenticates against the backend. Required.
	APIKey string

	// BaseURL overrides the API endpoint, including the /v1 suffix
	// (e.g. "http://localhost:9090/v1"). Empty means api.openai.com.
	BaseURL string

	// EmbedModel is the embedding model identifier.
	EmbedModel string

	// ChatModel is the chat completion model identifier.
	ChatModel string

	// EmbedBatchSize caps how many inputs are sent per embeddings request.
	EmbedBatchSize int

	// Temperature is the sampling temperature for generation.
	Temperature float32

	// Timeout bounds each HTTP request to the backend.
	Timeout time.Duration
}

// DefaultConfig returns the provider defaults.
func DefaultConfig() Config {
	return Config{
		EmbedModel:     "text-embedding-3-large",
		ChatModel:      "gpt-4.1",
		EmbedBatchSize: 1000,
		Temperature:    0.2,
		Timeout:        2 * time.Minute,
	}
}

// Client talks to the OpenAI API and implements both provider contracts.
type Client struct {
	api *goopenai.Client
	cfg Config

	mu   sync.RWMutex
	dims int
}

var (
	_ provider.Embedder  = (*Client)(nil)
	_ provider.Generator = (*Client)(nil)
)

// New creates a Client from cfg. Zero-valued fields fall back to the
// DefaultConfig values; only the API key is mandatory.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}

	defs := DefaultConfig()
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = defs.EmbedModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = defs.ChatModel
	}
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = defs.EmbedBatchSize
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defs.Temperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defs.Timeout
	}

	clientCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Client{
		api: goopenai.NewClientWithConfig(clientCfg),
		cfg: cfg,
	}, nil
}

// Embed converts texts into embedding vectors. Inputs beyond
// EmbedBatchSize are split into batches, sent sequentially, and
// concatenated so that vector i always embeds texts[i].
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.EmbedBatchSize {
		end := start + c.cfg.EmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}

	// Set dimensions from the first successful response.
	if len(out[0]) > 0 {
		c.mu.Lock()
		if c.dims == 0 {
			c.dims = len(out[0])
		}
		c.mu.Unlock()
	}

	return out, nil
}

// embedBatch sends a single embeddings request and orders the result
// vectors by the index the backend reports.
func (c *Client) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	debug.Log("provider", "embedding batch", "model", c.cfg.EmbedModel, "inputs", len(batch))

	start := time.Now()
	resp, err := c.api.CreateEmbeddings(ctx, goopenai.EmbeddingRequest{
		Input: batch,
		Model: goopenai.EmbeddingModel(c.cfg.EmbedModel),
	})
	observeRequest("embedding", start, err)
	if err != nil {
		return nil, mapError("embedding request failed", err)
	}

	if len(resp.Data) != len(batch) {
		return nil, api.NewModelError(fmt.Sprintf(
			"embedding response contained %d vectors for %d inputs", len(resp.Data), len(batch)))
	}

	vectors := make([][]float32, len(batch))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(batch) {
			return nil, api.NewModelError(fmt.Sprintf(
				"embedding response index %d out of range [0, %d)", d.Index, len(batch)))
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, nil
}

// Dimensions returns the dimensionality of the embedding vectors.
// Returns 0 until the first successful Embed call.
func (c *Client) Dimensions() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.dims
}

// Generate runs the prompt through the chat completion API and returns
// the completion text of the first choice.
func (c *Client) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	msgs := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		msgs[i] = goopenai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}

	debug.Log("provider", "chat completion", "model", c.cfg.ChatModel, "messages", len(msgs))

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.ChatModel,
		Messages:    msgs,
		Temperature: c.cfg.Temperature,
	})
	observeRequest("generation", start, err)
	if err != nil {
		return "", mapError("chat completion request failed", err)
	}

	if len(resp.Choices) == 0 {
		return "", api.NewModelError("chat completion response contained no choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// observeRequest records provider metrics for a single backend call.
func observeRequest(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	observability.ProviderRequestsTotal.WithLabelValues(operation, status).Inc()
	observability.ProviderRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// mapError converts SDK errors into APIErrors. Rate limiting and request
// rejections keep their own types so the transport can map them to the
// right status; everything else surfaces as a model error.
func mapError(prefix string, err error) *api.APIError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		message := fmt.Sprintf("%s: %s", prefix, apiErr.Message)
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return api.NewTooManyRequestsError(message)
		case http.StatusBadRequest:
			return api.NewInvalidRequestError("", message)
		default:
			return api.NewModelError(message)
		}
	}

	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		message := fmt.Sprintf("%s: HTTP %d", prefix, reqErr.HTTPStatusCode)
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests {
			return api.NewTooManyRequestsError(message)
		}
		return api.NewModelError(message)
	}

	return api.NewModelError(fmt.Sprintf("%s: %s", prefix, err.Error()))
}
