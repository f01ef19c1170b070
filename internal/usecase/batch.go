package usecase

import (
	"time"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/jitter"
)

// BatchState — состояние батча в пайплайне записи:
// Pending -> Writing -> {Committed | Aborted}
type BatchState int

const (
	BatchPending BatchState = iota
	BatchWriting
	BatchCommitted
	BatchAborted
)

func (s BatchState) String() string {
	switch s {
	case BatchPending:
		return "pending"
	case BatchWriting:
		return "writing"
	case BatchCommitted:
		return "committed"
	case BatchAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// BackoffPolicy — политика повторов батчевой записи
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Delay возвращает линейно растущую задержку перед повтором (base*attempt, с джиттером).
// attempt нумеруется с единицы.
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	return jitter.Linear(p.BaseDelay, attempt, jitter.DefaultJitter)
}

// ingestBatch — единица записи в индекс
type ingestBatch struct {
	idx    int
	state  BatchState
	points []domain.IndexPoint
}

// splitBatches нарезает точки на батчи фиксированного размера, сохраняя порядок
func splitBatches(points []domain.IndexPoint, size int) []ingestBatch {
	if size <= 0 {
		size = 1
	}

	batches := make([]ingestBatch, 0, (len(points)+size-1)/size)
	for start := 0; start < len(points); start += size {
		end := start + size
		if end > len(points) {
			end = len(points)
		}
		batches = append(batches, ingestBatch{
			idx:    len(batches),
			state:  BatchPending,
			points: points[start:end],
		})
	}

	return batches
}
