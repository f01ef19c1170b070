package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/google/uuid"
)

// IngestUseCase реализует offline-пайплайн: фьюжн эмбеддингов, пересоздание
// коллекции и последовательная батчевая запись с повторами.
type IngestUseCase struct {
	dataset  DatasetRepository
	points   PointRepository
	producer EventProducer
	cfg      *cfg.IngestCfg
	backoff  BackoffPolicy
	logger   logger.Logger
	// collection — имя целевой коллекции, попадает в отчет и событие перестроения
	collection string

	// wait переопределяется в тестах, чтобы не ждать реальные задержки
	wait func(ctx context.Context, d time.Duration) error
}

func NewIngestUC(
	dataset DatasetRepository,
	points PointRepository,
	producer EventProducer,
	ingestCfg *cfg.IngestCfg,
	collection string,
	logger logger.Logger,
) *IngestUseCase {
	uc := &IngestUseCase{
		dataset:  dataset,
		points:   points,
		producer: producer,
		cfg:      ingestCfg,
		backoff: BackoffPolicy{
			MaxAttempts: ingestCfg.MaxRetries,
			BaseDelay:   ingestCfg.RetryBaseDelay,
		},
		logger:     logger,
		collection: collection,
	}
	uc.wait = defaultWait

	return uc
}

// BuildIndex выполняет полный прогон ингестии. Прогон атомарен только в смысле
// «пересоздать и залить заново»: при падении посреди прогона путь восстановления —
// повторный полный прогон, а не дозапись.
func (u *IngestUseCase) BuildIndex(ctx context.Context) (*IngestReport, error) {
	const op = "IngestUseCase.BuildIndex"

	ds, err := u.dataset.Load(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	points, err := u.preparePoints(ds)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	u.logger.Infof("fused %d embeddings, recreating collection %q", len(points), u.collection)

	// Полное пересоздание коллекции исключает дубликаты и устаревшие точки
	if err := u.points.Recreate(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	batches := splitBatches(points, u.cfg.BatchSize)
	committed := 0
	for i := range batches {
		if err := u.writeBatch(ctx, &batches[i]); err != nil {
			// Хвостовые батчи остаются в состоянии pending: возобновления нет
			return nil, e.Wrap(op, err)
		}
		committed++
	}

	report := &IngestReport{
		RunID:            uuid.NewString(),
		Collection:       u.collection,
		PointsPlanned:    len(points),
		BatchesCommitted: committed,
	}

	u.verifyCount(ctx, report)
	u.publishRebuilt(ctx, report)

	return report, nil
}

// preparePoints валидирует входы, фьюзит эмбеддинги и собирает точки индекса
// с метаданными каталога. Отсутствие товара в каталоге не фатально.
func (u *IngestUseCase) preparePoints(ds *Dataset) ([]domain.IndexPoint, error) {
	if ds.ImageEmbeddings == nil || ds.ImageEmbeddings.Rows != len(ds.ProductIDs) {
		return nil, e.ErrProductCountMismatch
	}

	fused, err := Fuse(ds.ImageEmbeddings, ds.TextEmbeddings, u.cfg.ImageWeight, u.cfg.TextWeight)
	if err != nil {
		return nil, err
	}

	points := make([]domain.IndexPoint, len(fused))
	for i, vector := range fused {
		rec := ds.Catalog.Lookup(ds.ProductIDs[i])
		points[i] = *domain.NewIndexPoint(
			domain.PointID(ds.ProductIDs[i]),
			vector,
			domain.NewPointPayload(rec),
		)
	}

	return points, nil
}

// writeBatch прогоняет батч через конечный автомат записи:
// pending -> writing -> {committed | aborted}. Исчерпание повторов
// фатально для всего прогона.
func (u *IngestUseCase) writeBatch(ctx context.Context, b *ingestBatch) error {
	b.state = BatchWriting

	var lastErr error
	for attempt := 1; attempt <= u.backoff.MaxAttempts; attempt++ {
		if lastErr = u.points.Upsert(ctx, b.points); lastErr == nil {
			b.state = BatchCommitted
			u.logger.Infof("batch %d committed (%d points)", b.idx, len(b.points))
			return nil
		}

		u.logger.Warnf("batch %d write failed (attempt %d/%d): %v", b.idx, attempt, u.backoff.MaxAttempts, lastErr)

		if attempt < u.backoff.MaxAttempts {
			if err := u.wait(ctx, u.backoff.Delay(attempt)); err != nil {
				b.state = BatchAborted
				return err
			}
		}
	}

	b.state = BatchAborted
	return fmt.Errorf("batch %d: %w after %d attempts: %v", b.idx, e.ErrIngestionAborted, u.backoff.MaxAttempts, lastErr)
}

// verifyCount сверяет количество точек, о котором отчитался индекс,
// с количеством записанных. Расхождение логируется, но не чинится.
func (u *IngestUseCase) verifyCount(ctx context.Context, report *IngestReport) {
	count, err := u.points.Count(ctx)
	if err != nil {
		u.logger.Warnf("failed to verify point count: %v", err)
		return
	}

	report.PointsCount = count
	if count != uint64(report.PointsPlanned) {
		u.logger.Warnf("point count mismatch: collection reports %d, ingested %d", count, report.PointsPlanned)
		return
	}

	u.logger.Infof("ingestion finished: %d points verified in collection %q", count, report.Collection)
}

// publishRebuilt отправляет событие о перестроении индекса; ошибка не фатальна
func (u *IngestUseCase) publishRebuilt(ctx context.Context, report *IngestReport) {
	if u.producer == nil {
		return
	}

	if err := u.producer.PublishIndexRebuilt(ctx, report); err != nil {
		u.logger.Warnf("failed to publish index rebuilt event: %v", err)
	}
}

func defaultWait(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
