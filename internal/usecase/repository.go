package usecase

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/domain"
)

type PointRepository interface {
	// Recreate уничтожает и заново создает целевую коллекцию
	Recreate(ctx context.Context) error
	Upsert(ctx context.Context, points []domain.IndexPoint) error
	// Search возвращает хиты в порядке убывания score (сортировка на стороне индекса)
	Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchHit, error)
	Count(ctx context.Context) (uint64, error)
}

type DatasetRepository interface {
	Load(ctx context.Context) (*Dataset, error)
}
