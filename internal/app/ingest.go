package app

import (
	"context"
	"time"

	config "github.com/DRSN-tech/fashion-search/internal/cfg"
	kafkaInfra "github.com/DRSN-tech/fashion-search/internal/infrastructure/kafka"
	minioRepo "github.com/DRSN-tech/fashion-search/internal/repository/minio"
	qdrantRepo "github.com/DRSN-tech/fashion-search/internal/repository/qdrant"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/clients"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
)

// Верхняя граница на весь прогон: скачивание датасета, фьюжн и заливка
// ~44k точек батчами с ретраями укладываются с запасом.
const ingestRunTimeout = 30 * time.Minute

// RunIngestion собирает зависимости offline-пайплайна и выполняет один
// полный прогон построения индекса.
func RunIngestion(cfg *config.IngestionConfig, log logger.Logger) error {
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if err := qdrantClient.Client.Close(); err != nil {
			log.Warnf("qdrant close error: %v", err)
		}
	}()

	producer, err := kafkaInfra.NewProducer(log, cfg.Kafka)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	defer func() {
		if err := producer.Close(); err != nil {
			log.Warnf("kafka producer close error: %v", err)
		}
	}()

	datasetRepo := minioRepo.NewDatasetRepo(minioClient, cfg.Minio, log)
	pointRepo := qdrantRepo.NewPointRepo(qdrantClient.Client, cfg.Qdrant)

	ingestUC := usecase.NewIngestUC(
		datasetRepo,
		pointRepo,
		producer,
		cfg.Ingest,
		cfg.Qdrant.CollectionName,
		log,
	)

	ctx, cancel := context.WithTimeout(context.Background(), ingestRunTimeout)
	defer cancel()

	report, err := ingestUC.BuildIndex(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	log.Infof(
		"ingestion run %s finished: collection %q, %d batches committed, %d points indexed",
		report.RunID, report.Collection, report.BatchesCommitted, report.PointsCount,
	)

	return nil
}
