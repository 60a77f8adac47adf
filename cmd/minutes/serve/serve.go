// Package servecmder provides the serve command for running the minutes API server.
package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/api"
	"github.com/papercomputeco/minutes/cmd/minutes/runtime"
	"github.com/papercomputeco/minutes/pkg/ingest"
	"github.com/papercomputeco/minutes/pkg/logger"
)

type ServeCommander struct {
	listen    string
	watchDir  string
	configDir string
	debug     bool
	logger    *zap.Logger
}

const serveLongDesc string = `Run the Minutes API server.

Serves the meeting graph, query engine, and ripple detector over HTTP,
and mounts the MCP server at /mcp. With --watch, new or changed meeting
JSON files in the given directory are ingested automatically.

Examples:
  minutes serve
  minutes serve --listen :9000
  minutes serve --watch ./meetings`

const serveShortDesc string = "Run the Minutes API server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")
			return cmder.run()
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address for the API server to listen on (default from config)")
	cmd.Flags().StringVarP(&cmder.watchDir, "watch", "w", "", "Directory to watch for new meeting JSON files")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	components, err := runtime.Build(ctx, c.configDir, c.logger)
	if err != nil {
		return err
	}
	defer components.Close()

	listen := c.listen
	if listen == "" {
		listen = components.Config.API.Listen
	}

	server, err := api.NewServer(
		api.Config{
			ListenAddr: listen,
			Publisher:  components.Publisher,
		},
		components.Graph,
		components.Engine,
		components.Detector,
		c.logger,
	)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	errChan := make(chan error, 2)

	if c.watchDir != "" {
		watcher, err := ingest.NewWatcher(components.Loader, c.watchDir, c.logger)
		if err != nil {
			return fmt.Errorf("creating ingest watcher: %w", err)
		}

		c.logger.Info("watching for meeting files",
			zap.String("dir", c.watchDir),
		)

		go func() {
			if err := watcher.Run(ctx); err != nil {
				errChan <- fmt.Errorf("ingest watcher error: %w", err)
			}
		}()
	}

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	if err := server.Shutdown(); err != nil {
		c.logger.Warn("shutdown error", zap.Error(err))
	}

	// Persist the graph so ingests made while serving survive restarts.
	if err := components.SaveSnapshot(); err != nil {
		return err
	}

	return nil
}
