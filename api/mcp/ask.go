package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/query"
)

var (
	askToolName    = "ask"
	askDescription = "Ask a natural-language question about past meetings, decisions, and action items. Returns a synthesized answer with the sources that backed it and a confidence score."
)

// AskInput represents the input arguments for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from meeting records"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of sources to retrieve (default: 5)"`
	Fast     bool   `json:"fast,omitempty" jsonschema:"use the fast memory-backed path when available"`
}

// AskOutput represents the output of the ask tool.
type AskOutput struct {
	Question   string         `json:"question"`
	Answer     string         `json:"answer"`
	Confidence float64        `json:"confidence"`
	Sources    []query.Source `json:"sources"`
}

// handleAsk processes an ask request.
func (s *Server) handleAsk(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (*mcp.CallToolResult, AskOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP ask request",
		zap.String("question", input.Question),
		zap.Int("topK", input.TopK),
		zap.Bool("fast", input.Fast),
	)

	var result query.Result
	if input.Fast {
		result = s.config.Engine.QueryFast(ctx, input.Question)
	} else {
		result = s.config.Engine.Query(ctx, input.Question, input.TopK)
	}

	output := AskOutput{
		Question:   input.Question,
		Answer:     result.Answer,
		Confidence: result.Confidence,
		Sources:    result.Sources,
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ask output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize answer: %v", err)},
			},
		}, AskOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
