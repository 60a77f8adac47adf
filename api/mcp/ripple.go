package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/ripple"
)

var (
	rippleToolName    = "ripple"
	rippleDescription = "Analyze the downstream impact of changing a decision. Returns affected action items and conflicting decisions with severity, the people to notify, and suggested next steps."

	whatIfToolName    = "whatif"
	whatIfDescription = "Analyze a hypothetical change against the latest decision on a topic without committing it. Returns the same impact report as the ripple tool."
)

// RippleInput represents the input arguments for the ripple tool.
type RippleInput struct {
	DecisionID string `json:"decision_id" jsonschema:"the id of the decision being changed"`
	NewValue   string `json:"new_value" jsonschema:"the new decision content"`
	OldValue   string `json:"old_value,omitempty" jsonschema:"the prior decision content (defaults to the stored decision)"`
}

// WhatIfInput represents the input arguments for the whatif tool.
type WhatIfInput struct {
	Topic  string `json:"topic" jsonschema:"the decision topic to analyze"`
	Change string `json:"change" jsonschema:"the hypothetical change to evaluate"`
}

// RippleOutput represents the output of the ripple and whatif tools.
type RippleOutput struct {
	ChangeDescription string          `json:"change_description"`
	TotalAffected     int             `json:"total_affected"`
	Impacts           []ripple.Impact `json:"impacts"`
	PeopleToNotify    []string        `json:"people_to_notify"`
	Suggestions       []string        `json:"suggestions"`
}

// handleRipple processes a ripple analysis request.
func (s *Server) handleRipple(ctx context.Context, req *mcp.CallToolRequest, input RippleInput) (*mcp.CallToolResult, RippleOutput, error) {
	logger := s.config.Logger

	if input.DecisionID == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "decision_id is required"},
			},
		}, RippleOutput{}, nil
	}

	logger.Debug("MCP ripple request",
		zap.String("decision_id", input.DecisionID),
	)

	report := s.config.Detector.Detect(ctx, input.DecisionID, input.NewValue, input.OldValue)
	return rippleResult(logger, report)
}

// handleWhatIf processes a hypothetical change request.
func (s *Server) handleWhatIf(ctx context.Context, req *mcp.CallToolRequest, input WhatIfInput) (*mcp.CallToolResult, RippleOutput, error) {
	logger := s.config.Logger

	if input.Topic == "" {
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: "topic is required"},
			},
		}, RippleOutput{}, nil
	}

	logger.Debug("MCP whatif request",
		zap.String("topic", input.Topic),
	)

	report := s.config.Detector.WhatIf(ctx, input.Topic, input.Change)
	return rippleResult(logger, report)
}

// rippleResult wraps a report as a structured tool result with a JSON text block.
func rippleResult(logger *zap.Logger, report ripple.Report) (*mcp.CallToolResult, RippleOutput, error) {
	output := RippleOutput{
		ChangeDescription: report.ChangeDescription,
		TotalAffected:     report.TotalAffected,
		Impacts:           report.Impacts,
		PeopleToNotify:    report.PeopleToNotify,
		Suggestions:       report.Suggestions,
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal ripple output", zap.Error(err))
		return &mcp.CallToolResult{
			IsError: true,
			Content: []mcp.Content{
				&mcp.TextContent{Text: fmt.Sprintf("Failed to serialize report: %v", err)},
			},
		}, RippleOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
