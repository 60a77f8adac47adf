// Package runtime assembles the minutes component stack from the resolved
// configuration. Each CLI command builds the same stack so local commands and
// the server agree on storage paths and providers.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/config"
	"github.com/papercomputeco/minutes/pkg/dotdir"
	embeddingutils "github.com/papercomputeco/minutes/pkg/embeddings/utils"
	"github.com/papercomputeco/minutes/pkg/eventstream"
	eventskafka "github.com/papercomputeco/minutes/pkg/eventstream/kafka"
	eventsnop "github.com/papercomputeco/minutes/pkg/eventstream/nop"
	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/ingest"
	"github.com/papercomputeco/minutes/pkg/llm"
	"github.com/papercomputeco/minutes/pkg/llm/chain"
	llmollama "github.com/papercomputeco/minutes/pkg/llm/ollama"
	llmopenai "github.com/papercomputeco/minutes/pkg/llm/openai"
	"github.com/papercomputeco/minutes/pkg/memory"
	"github.com/papercomputeco/minutes/pkg/memory/backboard"
	"github.com/papercomputeco/minutes/pkg/query"
	"github.com/papercomputeco/minutes/pkg/retrieval"
	"github.com/papercomputeco/minutes/pkg/ripple"
	"github.com/papercomputeco/minutes/pkg/vector/inmemory"
	vectorutils "github.com/papercomputeco/minutes/pkg/vector/utils"
)

const (
	snapshotFile = "graph.json"
	vectorDBFile = "vectors.sqlite"

	// openaiKeyEnv and backboardKeyEnv carry credentials that never live
	// in config.toml.
	openaiKeyEnv    = "OPENAI_API_KEY"
	backboardKeyEnv = "MINUTES_BACKBOARD_API_KEY"
)

// Components is the assembled minutes stack.
type Components struct {
	Config    *config.Config
	Graph     *graph.Store
	Retrieval *retrieval.Adapter
	Engine    *query.Engine
	Detector  *ripple.Detector
	Loader    *ingest.Loader
	Publisher eventstream.Publisher
	Logger    *zap.Logger

	snapshotPath string
}

// Build resolves the configuration, restores the graph snapshot, and wires
// the full component stack.
func Build(ctx context.Context, configDir string, logger *zap.Logger) (*Components, error) {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return nil, err
	}

	ddm := dotdir.NewManager()
	dir, err := ddm.Target(configDir)
	if err != nil {
		return nil, err
	}

	c := &Components{
		Config: cfg,
		Logger: logger,
	}

	c.snapshotPath = cfg.Storage.SnapshotPath
	if c.snapshotPath == "" {
		c.snapshotPath = filepath.Join(dir, snapshotFile)
	}

	sqlitePath := cfg.Storage.SQLitePath
	if sqlitePath == "" {
		sqlitePath = filepath.Join(dir, vectorDBFile)
	}

	c.Graph = graph.NewStore()
	if err := restoreSnapshot(c.Graph, c.snapshotPath); err != nil {
		return nil, err
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: cfg.Embedding.Provider,
		TargetURL:    cfg.Embedding.Target,
		Model:        cfg.Embedding.Model,
	})
	if err != nil {
		return nil, err
	}

	primary, err := vectorutils.NewVectorDriver(ctx, &vectorutils.NewVectorDriverOpts{
		ProviderType: cfg.VectorStore.Provider,
		TargetURL:    cfg.VectorStore.Target,
		DBPath:       sqlitePath,
		Collection:   "minutes",
		Dimensions:   cfg.Embedding.Dimensions,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	c.Retrieval, err = retrieval.NewAdapter(retrieval.Opts{
		Primary:  primary,
		Fallback: inmemory.NewDriver(),
		Embedder: embedder,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	generator, err := buildGeneratorChain(cfg, logger)
	if err != nil {
		return nil, err
	}

	c.Engine, err = query.NewEngine(query.Opts{
		Graph:     c.Graph,
		Searcher:  c.Retrieval,
		Generator: generator,
		Memory:    buildMemory(cfg, logger),
		Logger:    logger,
	})
	if err != nil {
		return nil, err
	}

	c.Detector, err = ripple.NewDetector(c.Graph, generator, logger)
	if err != nil {
		return nil, err
	}

	c.Loader, err = ingest.NewLoader(c.Graph, c.Retrieval, logger)
	if err != nil {
		return nil, err
	}

	c.Publisher, err = buildPublisher(cfg, logger)
	if err != nil {
		return nil, err
	}

	return c, nil
}

// SnapshotPath returns the resolved graph snapshot location.
func (c *Components) SnapshotPath() string {
	return c.snapshotPath
}

// SaveSnapshot persists the graph to the snapshot path.
func (c *Components) SaveSnapshot() error {
	f, err := os.Create(c.snapshotPath)
	if err != nil {
		return fmt.Errorf("creating snapshot: %w", err)
	}
	defer f.Close()

	if err := c.Graph.Snapshot(f); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Close releases the stack's resources.
func (c *Components) Close() error {
	var errs []error
	if c.Retrieval != nil {
		errs = append(errs, c.Retrieval.Close())
	}
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	}
	return errors.Join(errs...)
}

func restoreSnapshot(g *graph.Store, path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	if err := g.Restore(f); err != nil {
		return fmt.Errorf("restoring snapshot: %w", err)
	}
	return nil
}

// buildGeneratorChain assembles the primary generator and, when configured,
// a fallback provider behind it.
func buildGeneratorChain(cfg *config.Config, logger *zap.Logger) (llm.Generator, error) {
	primary, err := buildGenerator(cfg.LLM.Provider, cfg.LLM.Target, cfg.LLM.Model)
	if err != nil {
		return nil, err
	}

	generators := []llm.Generator{primary}
	if cfg.LLM.Fallback != "" && cfg.LLM.Fallback != cfg.LLM.Provider {
		fallback, err := buildGenerator(cfg.LLM.Fallback, "", "")
		if err != nil {
			return nil, err
		}
		generators = append(generators, fallback)
	}

	return chain.NewGenerator(logger, generators...)
}

func buildGenerator(provider, target, model string) (llm.Generator, error) {
	switch provider {
	case "ollama":
		return llmollama.NewGenerator(llmollama.Config{
			BaseURL: target,
			Model:   model,
		}), nil
	case "openai":
		return llmopenai.NewGenerator(llmopenai.Config{
			BaseURL: target,
			APIKey:  os.Getenv(openaiKeyEnv),
			Model:   model,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// buildMemory returns the configured memory driver, or nil when memory is
// disabled or not configured, in which case the engine always takes the
// full query path.
func buildMemory(cfg *config.Config, logger *zap.Logger) memory.Driver {
	if !cfg.Memory.Enabled || cfg.Memory.Provider != "backboard" {
		return nil
	}

	driver, err := backboard.NewDriver(backboard.Config{
		BaseURL: cfg.Memory.Target,
		APIKey:  os.Getenv(backboardKeyEnv),
	}, logger)
	if err != nil {
		logger.Warn("memory layer not configured, fast queries take the full path",
			zap.Error(err),
		)
		return nil
	}
	return driver
}

func buildPublisher(cfg *config.Config, logger *zap.Logger) (eventstream.Publisher, error) {
	switch cfg.Events.Provider {
	case "kafka":
		return eventskafka.NewPublisher(eventskafka.Config{
			Brokers: cfg.Events.Brokers,
			Topic:   cfg.Events.Topic,
		}, logger)
	case "nop", "":
		return eventsnop.NewPublisher(), nil
	default:
		return nil, fmt.Errorf("unsupported events provider: %s", cfg.Events.Provider)
	}
}
