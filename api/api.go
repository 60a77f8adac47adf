package api

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apimcp "github.com/papercomputeco/minutes/api/mcp"
	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/query"
	"github.com/papercomputeco/minutes/pkg/ripple"
)

// Server is the API server for querying the minutes system.
type Server struct {
	config   Config
	graph    *graph.Store
	engine   *query.Engine
	detector *ripple.Detector
	logger   *zap.Logger
	app      *fiber.App
}

// NewServer creates a new API server.
// The graph store is injected to allow sharing with other components
// (e.g., the ingest watcher when running the combined server).
func NewServer(config Config, g *graph.Store, engine *query.Engine, detector *ripple.Detector, logger *zap.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		config:   config,
		graph:    g,
		engine:   engine,
		detector: detector,
		logger:   logger,
		app:      app,
	}

	app.Get("/ping", s.handlePing)
	app.Get("/graph/stats", s.handleGraphStats)
	app.Get("/graph/decisions/:topic", s.handleActiveDecisions)
	app.Get("/graph/history/:topic", s.handleDecisionHistory)

	app.Post("/v1/query", s.handleQuery)
	app.Post("/v1/query/fast", s.handleQueryFast)
	app.Post("/v1/ripple", s.handleRipple)
	app.Post("/v1/whatif", s.handleWhatIf)

	mcpServer, err := apimcp.NewServer(apimcp.Config{
		Engine:   engine,
		Detector: detector,
		Noop:     engine == nil || detector == nil,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}
	app.All("/mcp", adaptor.HTTPHandler(mcpServer.Handler()))

	return s, nil
}

// App exposes the underlying fiber app for in-process testing.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		zap.String("listen", s.config.ListenAddr),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
