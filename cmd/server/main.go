// Command server runs the auskunft retrieval gateway.
//
// Configuration is layered: built-in defaults, then an optional YAML
// config file, then environment variables (AUSKUNFT_*, plus
// OPENAI_API_KEY for the API key). See pkg/config for the full set.
//
//	server -config config.yaml
//	server -addr :9000
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rhuss/auskunft/pkg/chunker"
	"github.com/rhuss/auskunft/pkg/config"
	"github.com/rhuss/auskunft/pkg/debug"
	"github.com/rhuss/auskunft/pkg/extract"
	"github.com/rhuss/auskunft/pkg/mcpserver"
	"github.com/rhuss/auskunft/pkg/pipeline"
	"github.com/rhuss/auskunft/pkg/provider/openai"
	transporthttp "github.com/rhuss/auskunft/pkg/transport/http"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to the YAML config file")
	addr := flag.String("addr", "", "listen address override, e.g. :9000")
	flag.Parse()

	// A .env file is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	debug.Init(strings.Join(cfg.Debug.Categories, ","), cfg.Debug.Level)

	chk, err := chunker.New(chunker.Config{
		Tokens:   cfg.Chunking.Tokens,
		Overlap:  cfg.Chunking.Overlap,
		Encoding: cfg.Chunking.Encoding,
	})
	if err != nil {
		return fmt.Errorf("creating chunker: %w", err)
	}

	prov, err := openai.New(openai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		EmbedModel:     cfg.OpenAI.EmbedModel,
		ChatModel:      cfg.OpenAI.ChatModel,
		EmbedBatchSize: cfg.OpenAI.EmbedBatchSize,
		Temperature:    cfg.OpenAI.Temperature,
		Timeout:        cfg.OpenAI.Timeout,
	})
	if err != nil {
		return fmt.Errorf("creating provider: %w", err)
	}

	pipe, err := pipeline.New(extract.DefaultRegistry(), chk, prov, prov, pipeline.Config{
		TopKDefault:  cfg.Retrieval.TopK,
		PreviewChars: cfg.Retrieval.PreviewChars,
	})
	if err != nil {
		return fmt.Errorf("creating pipeline: %w", err)
	}

	listenAddr := cfg.Server.Addr()
	if *addr != "" {
		listenAddr = *addr
	}

	opts := []transporthttp.ServerOption{
		transporthttp.WithAddr(listenAddr),
		transporthttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout),
		transporthttp.WithMaxBodySize(cfg.Server.MaxBodySize),
		transporthttp.WithMaxUploadSize(cfg.Server.MaxUploadSize),
	}
	if cfg.MCP.Enabled {
		opts = append(opts, transporthttp.WithHandler(cfg.MCP.Path,
			mcpserver.NewHandler(pipe, "auskunft", version)))
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, transporthttp.WithHandler("GET "+cfg.Metrics.Path, promhttp.Handler()))
	}

	srv := transporthttp.NewServer(pipe, opts...)

	slog.Info("auskunft starting",
		"addr", listenAddr,
		"embed_model", cfg.OpenAI.EmbedModel,
		"chat_model", cfg.OpenAI.ChatModel,
		"mcp", cfg.MCP.Enabled,
		"metrics", cfg.Metrics.Enabled)

	return srv.ListenAndServe()
}
