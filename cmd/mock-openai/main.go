// Command mock-openai runs a deterministic OpenAI-compatible backend
// for local development and integration testing. Embeddings are hashed
// bag-of-words vectors, so texts sharing words really do score as
// similar, and chat completions answer from the first context chunk.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode"
)

// embeddingDim is the dimensionality of the mock embedding space.
const embeddingDim = 64

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/embeddings", handleEmbeddings)
	mux.HandleFunc("POST /v1/chat/completions", handleChatCompletions)
	mux.HandleFunc("GET /v1/models", handleModels)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock openai backend starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock openai backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock openai backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// --- Embeddings ---

type embeddingRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"`
}

type embeddingData struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []embeddingData `json:"data"`
	Usage  usage           `json:"usage"`
}

type usage struct {
	PromptTokens int `json:"prompt_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

func handleEmbeddings(w http.ResponseWriter, r *http.Request) {
	var req embeddingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request")
		return
	}

	texts, ok := inputTexts(req.Input)
	if !ok {
		writeError(w, "input must be a string or an array of strings")
		return
	}

	resp := embeddingResponse{
		Object: "list",
		Model:  modelOrDefault(req.Model, "mock-embedding"),
		Data:   make([]embeddingData, len(texts)),
	}
	tokens := 0
	for i, text := range texts {
		resp.Data[i] = embeddingData{
			Object:    "embedding",
			Index:     i,
			Embedding: embed(text),
		}
		tokens += len(strings.Fields(text))
	}
	resp.Usage = usage{PromptTokens: tokens, TotalTokens: tokens}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// inputTexts accepts the two input encodings the embeddings API allows:
// a single string or an array of strings.
func inputTexts(input any) ([]string, bool) {
	switch v := input.(type) {
	case string:
		return []string{v}, true
	case []any:
		texts := make([]string, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			texts[i] = s
		}
		return texts, true
	default:
		return nil, false
	}
}

// embed maps a text to a unit vector by hashing each word into a fixed
// number of buckets. Shared vocabulary produces overlapping buckets, so
// cosine similarity behaves plausibly for retrieval.
func embed(text string) []float32 {
	vec := make([]float32, embeddingDim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
	for _, word := range words {
		h := fnv.New32a()
		h.Write([]byte(word))
		vec[h.Sum32()%embeddingDim]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec
}

// --- Chat completions ---

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   usage        `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      chatMsg `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "invalid request")
		return
	}

	resp := chatResponse{
		ID:     "chatcmpl-mock",
		Object: "chat.completion",
		Model:  modelOrDefault(req.Model, "mock-chat"),
		Choices: []chatChoice{
			{
				Index: 0,
				Message: chatMsg{
					Role:    "assistant",
					Content: answerFrom(lastUserMessage(req.Messages)),
				},
				FinishReason: "stop",
			},
		},
		Usage: usage{PromptTokens: 10, TotalTokens: 15},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// answerFrom builds a deterministic answer. When the prompt carries
// context chunks, the reply quotes the first line of chunk [1] so
// end-to-end tests can assert the retrieval fed the generation.
func answerFrom(prompt string) string {
	_, after, found := strings.Cut(prompt, "[1] (")
	if !found {
		return "Hello from the mock backend!"
	}
	_, chunk, found := strings.Cut(after, ")\n")
	if !found {
		return "Hello from the mock backend!"
	}
	line := chunk
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	return "According to the documents: " + strings.TrimSpace(line) + " [1]"
}

func lastUserMessage(messages []chatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

// --- Models endpoint ---

func handleModels(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"object": "list",
		"data": []map[string]any{
			{"id": "mock-embedding", "object": "model", "owned_by": "auskunft-mock"},
			{"id": "mock-chat", "object": "model", "owned_by": "auskunft-mock"},
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// --- Helpers ---

func modelOrDefault(model, fallback string) string {
	if model == "" {
		return fallback
	}
	return model
}

func writeError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    "invalid_request_error",
		},
	})
}
