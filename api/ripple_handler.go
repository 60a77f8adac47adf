package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/eventstream"
	"github.com/papercomputeco/minutes/pkg/ripple"
)

// RippleRequest is the body for POST /v1/ripple.
type RippleRequest struct {
	DecisionID string `json:"decision_id"`
	NewValue   string `json:"new_value"`
	OldValue   string `json:"old_value,omitempty"`
}

// WhatIfRequest is the body for POST /v1/whatif.
type WhatIfRequest struct {
	Topic  string `json:"topic"`
	Change string `json:"change"`
}

// handleRipple analyzes the downstream impact of changing a decision.
func (s *Server) handleRipple(c *fiber.Ctx) error {
	if s.detector == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "ripple detector is not configured",
		})
	}

	var req RippleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.DecisionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "decision_id is required"})
	}
	if strings.TrimSpace(req.NewValue) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "new_value is required"})
	}

	report := s.detector.Detect(c.Context(), req.DecisionID, req.NewValue, req.OldValue)
	s.publishRipple(c, req.DecisionID, report)

	return c.JSON(report)
}

// handleWhatIf analyzes a hypothetical change against the latest decision
// on a topic.
func (s *Server) handleWhatIf(c *fiber.Ctx) error {
	if s.detector == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "ripple detector is not configured",
		})
	}

	var req WhatIfRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Topic) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "topic is required"})
	}
	if strings.TrimSpace(req.Change) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "change is required"})
	}

	report := s.detector.WhatIf(c.Context(), req.Topic, req.Change)
	s.publishRipple(c, "", report)

	return c.JSON(report)
}

// publishRipple emits the report to the configured event stream. Publish
// failures are logged but never fail the request.
func (s *Server) publishRipple(c *fiber.Ctx, decisionID string, report ripple.Report) {
	if s.config.Publisher == nil {
		return
	}

	event := eventstream.NewRippleDetectedEvent(decisionID, report)
	if err := s.config.Publisher.PublishRipple(c.Context(), event); err != nil {
		s.logger.Warn("failed to publish ripple event",
			zap.String("decision_id", decisionID),
			zap.Error(err),
		)
	}
}
