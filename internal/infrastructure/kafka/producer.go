package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/segmentio/kafka-go"
)

// Producer публикует события перестроения индекса для downstream-потребителей
type Producer struct {
	writer *kafka.Writer
	logger logger.Logger
	cfg    *cfg.KafkaCfg
}

// indexRebuiltEvent — тело события index.rebuilt
type indexRebuiltEvent struct {
	RunID       string    `json:"run_id"`
	Collection  string    `json:"collection"`
	PointsCount uint64    `json:"points_count"`
	RebuiltAt   time.Time `json:"rebuilt_at"`
}

func NewProducer(logger logger.Logger, cfg *cfg.KafkaCfg) (*Producer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 10 * time.Second,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warnf("Kafka producer error: %s", err.Error())
			}
		},
	}

	return &Producer{
		writer: writer,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// PublishIndexRebuilt отправляет событие об успешном прогоне ингестии.
// Ключ — имя коллекции, чтобы события одного индекса шли в одну партицию по порядку.
func (p *Producer) PublishIndexRebuilt(ctx context.Context, report *usecase.IngestReport) error {
	value, err := json.Marshal(indexRebuiltEvent{
		RunID:       report.RunID,
		Collection:  report.Collection,
		PointsCount: report.PointsCount,
		RebuiltAt:   time.Now().UTC(),
	})
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(report.Collection),
		Value: value,
	})
}

// Close закрывает writer, дожидаясь отправки буферизованных сообщений
func (p *Producer) Close() error {
	return p.writer.Close()
}
