package usecase

import "context"

type SearchUC interface {
	SearchByText(ctx context.Context, req *TextSearchReq) (*SearchRes, error)
	SearchByImage(ctx context.Context, req *ImageSearchReq) (*SearchRes, error)
}

type IngestUC interface {
	BuildIndex(ctx context.Context) (*IngestReport, error)
}
