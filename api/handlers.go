package api

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
)

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleGraphStats returns entity and edge counts for the graph.
func (s *Server) handleGraphStats(c *fiber.Ctx) error {
	return c.JSON(s.graph.Stats())
}

// handleActiveDecisions returns the non-superseded decisions for a topic.
func (s *Server) handleActiveDecisions(c *fiber.Ctx) error {
	topic, err := topicParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "topic parameter required"})
	}

	decisions := s.graph.ActiveDecisions(topic)
	return c.JSON(fiber.Map{
		"topic":     topic,
		"count":     len(decisions),
		"decisions": decisions,
	})
}

// handleDecisionHistory returns the chronological decision history for a topic,
// including superseded decisions with their meeting and owner context.
func (s *Server) handleDecisionHistory(c *fiber.Ctx) error {
	topic, err := topicParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "topic parameter required"})
	}

	history := s.graph.DecisionHistory(topic)
	return c.JSON(fiber.Map{
		"topic":   topic,
		"count":   len(history),
		"history": history,
	})
}

// topicParam extracts and unescapes the :topic route parameter.
func topicParam(c *fiber.Ctx) (string, error) {
	raw := c.Params("topic")
	if raw == "" {
		return "", fiber.ErrBadRequest
	}

	topic, err := url.PathUnescape(raw)
	if err != nil {
		return raw, nil
	}
	return topic, nil
}
