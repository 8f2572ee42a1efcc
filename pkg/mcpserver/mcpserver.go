// Package mcpserver exposes the retrieval pipeline to Model Context
// Protocol clients. Agents connect over streamable HTTP and use the
// "ask" tool for grounded answers or the "search" tool for raw chunk
// retrieval.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/rhuss/auskunft/pkg/api"
	"github.com/rhuss/auskunft/pkg/pipeline"
)

// Pipeline is the subset of pipeline operations the MCP tools dispatch to.
type Pipeline interface {
	Ask(ctx context.Context, question string, topK int) (*api.AskResponse, error)
	Retrieve(ctx context.Context, question string, topK int) ([]pipeline.ScoredChunk, error)
}

type askInput struct {
	Question string `json:"question" jsonschema_description:"The question to answer from the indexed documents"`
	TopK     int    `json:"top_k,omitempty" jsonschema_description:"How many chunks to ground the answer on (0 selects the default)"`
}

type searchInput struct {
	Query string `json:"query" jsonschema_description:"The text to find similar document chunks for"`
	TopK  int    `json:"top_k,omitempty" jsonschema_description:"How many chunks to return (0 selects the default)"`
}

// searchHit is the wire shape of one retrieved chunk in a search result.
type searchHit struct {
	Position int     `json:"position"`
	Source   string  `json:"source"`
	Score    float32 `json:"score"`
	Text     string  `json:"text"`
}

// NewServer builds an MCP server exposing the ask and search tools over
// the given pipeline.
func NewServer(p Pipeline, name, version string) *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{Name: name, Version: version},
		nil,
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed documents, citing sources as [#]",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in askInput) (*mcp.CallToolResult, struct{}, error) {
		resp, err := p.Ask(ctx, in.Question, in.TopK)
		if err != nil {
			return errorResult(err), struct{}{}, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: formatAnswer(resp)}},
		}, struct{}{}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the indexed document chunks most similar to a query, as JSON",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in searchInput) (*mcp.CallToolResult, struct{}, error) {
		chunks, err := p.Retrieve(ctx, in.Query, in.TopK)
		if err != nil {
			return errorResult(err), struct{}{}, nil
		}
		hits := make([]searchHit, len(chunks))
		for i, c := range chunks {
			hits[i] = searchHit{
				Position: c.Position,
				Source:   c.Source,
				Score:    c.Score,
				Text:     c.Text,
			}
		}
		data, err := json.MarshalIndent(hits, "", "  ")
		if err != nil {
			return nil, struct{}{}, fmt.Errorf("marshal search hits: %w", err)
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, struct{}{}, nil
	})

	return server
}

// NewHandler wraps the MCP server in a streamable HTTP handler for
// mounting on the main server mux.
func NewHandler(p Pipeline, name, version string) http.Handler {
	server := NewServer(p, name, version)
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, nil)
}

// formatAnswer renders an ask response as text: the answer, then the
// cited sources when there are any.
func formatAnswer(resp *api.AskResponse) string {
	if len(resp.Sources) == 0 {
		return resp.Answer
	}
	var sb strings.Builder
	sb.WriteString(resp.Answer)
	sb.WriteString("\n\nSources:\n")
	for _, s := range resp.Sources {
		fmt.Fprintf(&sb, "[%d] %s: %s\n", s.ID, s.Source, s.Preview)
	}
	return sb.String()
}

// errorResult converts a pipeline failure into a tool-level error result.
func errorResult(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}
