package api

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// QueryRequest is the body for POST /v1/query and /v1/query/fast.
type QueryRequest struct {
	Question string `json:"question"`
	TopK     int    `json:"top_k,omitempty"`
}

// handleQuery answers a natural-language question over the full
// retrieve-enrich-synthesize path.
func (s *Server) handleQuery(c *fiber.Ctx) error {
	if s.engine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "query engine is not configured",
		})
	}

	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	if req.TopK < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "top_k must be a positive integer"})
	}

	result := s.engine.Query(c.Context(), req.Question, req.TopK)
	return c.JSON(result)
}

// handleQueryFast answers via the memory service, falling back to the full
// query path when memory is unavailable.
func (s *Server) handleQueryFast(c *fiber.Ctx) error {
	if s.engine == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error: "query engine is not configured",
		})
	}

	var req QueryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "invalid request body"})
	}

	if strings.TrimSpace(req.Question) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "question is required"})
	}

	result := s.engine.QueryFast(c.Context(), req.Question)
	return c.JSON(result)
}
