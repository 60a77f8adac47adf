// Package mcp provides an MCP (Model Context Protocol) server for the minutes system.
package mcp

import (
	"errors"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/query"
	"github.com/papercomputeco/minutes/pkg/ripple"
	"github.com/papercomputeco/minutes/pkg/utils"
)

type Config struct {
	// Engine answers natural-language questions over the meeting graph
	Engine *query.Engine

	// Detector analyzes downstream impacts of decision changes
	Detector *ripple.Detector

	// Noop for empty MCP server
	Noop bool

	// Logger is the configured zap logger
	Logger *zap.Logger
}

type Server struct {
	config    Config
	mcpServer *mcp.Server
	handler   *mcp.StreamableHTTPHandler
}

// NewServer creates a new MCP server with the ask, ripple, and whatif tools.
func NewServer(c Config) (*Server, error) {
	s := &Server{
		config: c,
	}

	mcpServer := mcp.NewServer(
		&mcp.Implementation{
			Name:    "minutes",
			Version: utils.Version,
		},
		&mcp.ServerOptions{},
	)

	if !c.Noop {
		if c.Engine == nil {
			return nil, errors.New("query engine is required")
		}
		if c.Detector == nil {
			return nil, errors.New("ripple detector is required")
		}
		if c.Logger == nil {
			return nil, errors.New("logger is required")
		}

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        askToolName,
			Description: askDescription,
		}, s.handleAsk)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        rippleToolName,
			Description: rippleDescription,
		}, s.handleRipple)

		mcp.AddTool(mcpServer, &mcp.Tool{
			Name:        whatIfToolName,
			Description: whatIfDescription,
		}, s.handleWhatIf)
	}

	s.mcpServer = mcpServer

	// Create a streamable HTTP net/http handler for stateless operations
	s.handler = mcp.NewStreamableHTTPHandler(
		func(_ *http.Request) *mcp.Server {
			return mcpServer
		},
		&mcp.StreamableHTTPOptions{
			Stateless: true,
		},
	)

	return s, nil
}

// Handler returns the HTTP handler for the MCP server.
func (s *Server) Handler() http.Handler {
	return s.handler
}
