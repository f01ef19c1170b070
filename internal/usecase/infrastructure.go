package usecase

import "context"

type EncoderInfra interface {
	EncodeText(ctx context.Context, text string) (*EncodeRes, error)
	EncodeImage(ctx context.Context, data []byte, contentType string) (*EncodeRes, error)
}

type EventProducer interface {
	PublishIndexRebuilt(ctx context.Context, report *IngestReport) error
}
