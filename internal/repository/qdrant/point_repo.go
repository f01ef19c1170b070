package qdrant

import (
	"context"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/jimlawless/whereami"
	"github.com/qdrant/go-client/qdrant"
)

// PointRepo — репозиторий точек индекса поверх Qdrant
type PointRepo struct {
	client *qdrant.Client
	cfg    *cfg.QdrantCfg
}

func NewPointRepo(client *qdrant.Client, cfg *cfg.QdrantCfg) *PointRepo {
	return &PointRepo{
		client: client,
		cfg:    cfg,
	}
}

// Recreate уничтожает коллекцию (если есть) и создает ее заново
// с cosine-метрикой. Деструктивно: все точки теряются.
func (q *PointRepo) Recreate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, q.cfg.WriteTimeout)
	defer cancel()

	exists, err := q.client.CollectionExists(ctx, q.cfg.CollectionName)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if exists {
		if err := q.client.DeleteCollection(ctx, q.cfg.CollectionName); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if err := q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.cfg.CollectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.cfg.VectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	}); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Upsert записывает батч точек с wait=true: вызов возвращается только после
// того, как точки видны поиску.
func (q *PointRepo) Upsert(ctx context.Context, points []domain.IndexPoint) error {
	ctx, cancel := context.WithTimeout(ctx, q.cfg.WriteTimeout)
	defer cancel()

	reqPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		reqPoints = append(reqPoints, &qdrant.PointStruct{
			Id:      qdrant.NewIDNum(point.ID),
			Vectors: qdrant.NewVectors(point.Vector...),
			Payload: qdrant.NewValueMap(point.Payload),
		})
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.cfg.CollectionName,
		Points:         reqPoints,
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// Search выполняет top-K поиск по вектору запроса с payload.
// Порядок хитов — порядок Qdrant (по убыванию score), пересортировки нет.
func (q *PointRepo) Search(ctx context.Context, vector []float32, limit int) ([]domain.SearchHit, error) {
	ctx, cancel := context.WithTimeout(ctx, q.cfg.SearchTimeout)
	defer cancel()

	scored, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.cfg.CollectionName,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	hits := make([]domain.SearchHit, 0, len(scored))
	for _, point := range scored {
		hits = append(hits, *domain.NewSearchHit(
			point.Score,
			payloadString(point.Payload, "product_id_str"),
			payloadString(point.Payload, "productDisplayName"),
			payloadString(point.Payload, "masterCategory"),
		))
	}

	return hits, nil
}

// Count возвращает точное количество точек в коллекции
func (q *PointRepo) Count(ctx context.Context) (uint64, error) {
	ctx, cancel := context.WithTimeout(ctx, q.cfg.SearchTimeout)
	defer cancel()

	count, err := q.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: q.cfg.CollectionName,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return count, nil
}

// payloadString достает строковое значение из payload; отсутствие поля — это nil, не ошибка
func payloadString(payload map[string]*qdrant.Value, key string) *string {
	value, ok := payload[key]
	if !ok || value == nil {
		return nil
	}

	if _, isString := value.GetKind().(*qdrant.Value_StringValue); !isString {
		return nil
	}

	s := value.GetStringValue()
	return &s
}
