package clients

import (
	"context"
	"fmt"

	config "github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

type QdrantClient struct {
	Client *qdrant.Client
	cfg    *config.QdrantCfg
}

func NewQdrantClient(cfg *config.QdrantCfg) (*QdrantClient, error) {
	qdrantClient, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.ApiKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &QdrantClient{
		Client: qdrantClient,
		cfg:    cfg,
	}, nil
}

// RequireCollection проверяет, что целевая коллекция существует и возвращает
// количество точек в ней. Отсутствие коллекции — фатальная ошибка старта:
// онлайн-сервис не создает коллекцию сам, ее наполняет offline-пайплайн.
func RequireCollection(ctx context.Context, client *QdrantClient) (uint64, error) {
	exists, err := client.Client.CollectionExists(ctx, client.cfg.CollectionName)
	if err != nil {
		return 0, fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		return 0, fmt.Errorf("collection %q does not exist, run the ingestion pipeline first", client.cfg.CollectionName)
	}

	count, err := client.Client.Count(ctx, &qdrant.CountPoints{
		CollectionName: client.cfg.CollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count collection points: %w", err)
	}

	return count, nil
}
