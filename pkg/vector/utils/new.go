package vectorutils

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/vector"
	"github.com/papercomputeco/minutes/pkg/vector/inmemory"
	"github.com/papercomputeco/minutes/pkg/vector/qdrant"
	"github.com/papercomputeco/minutes/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	ProviderType string
	TargetURL    string
	DBPath       string
	Collection   string
	Dimensions   uint
	Logger       *zap.Logger
}

func NewVectorDriver(ctx context.Context, o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "memory":
		return inmemory.NewDriver(), nil
	case "sqlite":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.DBPath,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "qdrant":
		host, port, err := splitHostPort(o.TargetURL)
		if err != nil {
			return nil, err
		}
		return qdrant.NewQdrantDriver(ctx, qdrant.Config{
			Host:       host,
			Port:       port,
			Collection: o.Collection,
			Dimensions: uint64(o.Dimensions),
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

// splitHostPort parses "host:port" target URLs for gRPC providers.
// A missing port falls back to the provider default.
func splitHostPort(target string) (string, int, error) {
	if target == "" {
		return "", 0, nil
	}

	host := target
	port := 0
	for i := len(target) - 1; i >= 0; i-- {
		if target[i] == ':' {
			host = target[:i]
			if _, err := fmt.Sscanf(target[i+1:], "%d", &port); err != nil {
				return "", 0, fmt.Errorf("invalid vector store target %q: %w", target, err)
			}
			break
		}
	}

	return host, port, nil
}
