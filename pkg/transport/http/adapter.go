// Package http serves the auskunft REST API over HTTP, routing requests
// to the retrieval pipeline and serializing responses as JSON.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rhuss/auskunft/pkg/api"
	"github.com/rhuss/auskunft/pkg/transport"
)

// multipartMemory is how much of a parsed upload is held in memory
// before spilling to temp files.
const multipartMemory = 32 << 20

// Pipeline is the subset of pipeline operations the adapter dispatches to.
type Pipeline interface {
	Ingest(ctx context.Context, docs []api.Document) (*api.IngestResponse, error)
	Build(ctx context.Context) (*api.BuildResponse, error)
	Ask(ctx context.Context, question string, topK int) (*api.AskResponse, error)
	Reset(ctx context.Context) (*api.ResetResponse, error)
}

// Adapter serves the auskunft API over HTTP. It routes requests to the
// pipeline and serializes responses.
type Adapter struct {
	pipeline Pipeline
	mux      *http.ServeMux
	handler  http.Handler
	config   Config
}

// Config holds configuration for the HTTP adapter.
type Config struct {
	// MaxBodySize bounds JSON request bodies.
	MaxBodySize int64

	// MaxUploadSize bounds multipart upload bodies.
	MaxUploadSize int64

	Validation api.ValidationConfig
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		MaxBodySize:   1 << 20,  // 1 MB
		MaxUploadSize: 64 << 20, // 64 MB
		Validation:    api.DefaultValidationConfig(),
	}
}

// NewAdapter creates an HTTP adapter dispatching to the given pipeline.
// Middleware is applied in the given order; the first middleware is the
// outermost wrapper.
func NewAdapter(pipeline Pipeline, cfg Config, middlewares ...transport.Middleware) *Adapter {
	a := &Adapter{
		pipeline: pipeline,
		mux:      http.NewServeMux(),
		config:   cfg,
	}

	a.mux.HandleFunc("POST /v1/documents", a.handleIngest)
	a.mux.HandleFunc("POST /v1/index", a.handleBuild)
	a.mux.HandleFunc("POST /v1/ask", a.handleAsk)
	a.mux.HandleFunc("POST /v1/reset", a.handleReset)
	a.mux.HandleFunc("GET /healthz", a.handleHealth)
	a.mux.HandleFunc("/", a.handleNotFound)

	a.handler = transport.Chain(middlewares...)(a.mux)

	return a
}

// Handler returns the http.Handler for this adapter, with the middleware
// chain applied. Use this to integrate with an http.Server or to test
// with httptest.
func (a *Adapter) Handler() http.Handler {
	return a.handler
}

// Mount registers an additional handler on the adapter's mux, inside the
// middleware chain. Used for the MCP and metrics endpoints.
func (a *Adapter) Mount(pattern string, h http.Handler) {
	a.mux.Handle(pattern, h)
}

// handleIngest handles POST /v1/documents. Documents arrive as a
// multipart form under the field name "files".
func (a *Adapter) handleIngest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxUploadSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteAPIError(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("upload too large (max %d bytes)", a.config.MaxUploadSize)))
			return
		}
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("body", "invalid multipart form: "+err.Error()))
		return
	}

	headers := r.MultipartForm.File["files"]
	docs := make([]api.Document, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			transport.WriteAPIError(w, api.NewServerError("open uploaded file "+fh.Filename+": "+err.Error()))
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			transport.WriteAPIError(w, api.NewServerError("read uploaded file "+fh.Filename+": "+err.Error()))
			return
		}
		docs = append(docs, api.Document{Name: fh.Filename, Data: data})
	}

	if apiErr := api.ValidateIngest(docs, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.pipeline.Ingest(r.Context(), docs)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleBuild handles POST /v1/index. The request carries no body.
func (a *Adapter) handleBuild(w http.ResponseWriter, r *http.Request) {
	resp, err := a.pipeline.Build(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAsk handles POST /v1/ask.
func (a *Adapter) handleAsk(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if ct != "" && !strings.HasPrefix(ct, "application/json") {
		transport.WriteErrorResponse(w,
			api.NewInvalidRequestError("content_type", "Content-Type must be application/json"),
			http.StatusUnsupportedMediaType,
		)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.config.MaxBodySize)

	var req api.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			transport.WriteAPIError(w,
				api.NewInvalidRequestError("body", fmt.Sprintf("request body too large (max %d bytes)", a.config.MaxBodySize)))
			return
		}
		transport.WriteAPIError(w,
			api.NewInvalidRequestError("body", "invalid JSON: "+err.Error()))
		return
	}

	if apiErr := api.ValidateAskRequest(&req, a.config.Validation); apiErr != nil {
		transport.WriteAPIError(w, apiErr)
		return
	}

	resp, err := a.pipeline.Ask(r.Context(), req.Question, req.TopK)
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReset handles POST /v1/reset.
func (a *Adapter) handleReset(w http.ResponseWriter, r *http.Request) {
	resp, err := a.pipeline.Reset(r.Context())
	if err != nil {
		writePipelineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /healthz.
func (a *Adapter) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFound catches requests to unregistered paths and answers with
// the JSON error format instead of the plain text default.
func (a *Adapter) handleNotFound(w http.ResponseWriter, r *http.Request) {
	transport.WriteAPIError(w,
		api.NewNotFoundError(fmt.Sprintf("unknown endpoint: %s %s", r.Method, r.URL.Path)))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writePipelineError serializes a pipeline failure, preserving APIError
// types and wrapping everything else as a server error.
func writePipelineError(w http.ResponseWriter, err error) {
	transport.WriteAPIError(w, api.AsAPIError(err))
}
