package usecase

import (
	"context"
	"strings"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
)

const (
	// TopNDefault — количество результатов по умолчанию
	TopNDefault = 4
	topNMax     = 20

	imageURLExtension = ".jpg"
)

// SearchUseCase реализует онлайн-матчер: запрос -> эмбеддинг -> top-K поиск -> выдача.
type SearchUseCase struct {
	encoder EncoderInfra
	points  PointRepository
	storage *cfg.StorageCfg
	logger  logger.Logger
}

func NewSearchUC(
	encoder EncoderInfra,
	points PointRepository,
	storage *cfg.StorageCfg,
	logger logger.Logger,
) *SearchUseCase {
	return &SearchUseCase{
		encoder: encoder,
		points:  points,
		storage: storage,
		logger:  logger,
	}
}

// SearchByText ищет товары по текстовому описанию.
func (s *SearchUseCase) SearchByText(ctx context.Context, req *TextSearchReq) (*SearchRes, error) {
	const op = "SearchUseCase.SearchByText"

	text := strings.TrimSpace(req.QueryText)
	if text == "" {
		return nil, e.ErrEmptyQueryText
	}

	topN, err := normalizeTopN(req.TopN)
	if err != nil {
		return nil, err
	}

	enc, err := s.encoder.EncodeText(ctx, text)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := s.searchAndFormat(ctx, enc, topN)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &SearchRes{
		QueryType:    "text",
		QueryContent: map[string]any{"text": text, "top_n": topN},
		Results:      results,
	}, nil
}

// SearchByImage ищет товары по загруженному изображению.
// Недопустимый Content-Type отклоняется до обращения к encoder-сервису.
func (s *SearchUseCase) SearchByImage(ctx context.Context, req *ImageSearchReq) (*SearchRes, error) {
	const op = "SearchUseCase.SearchByImage"

	if len(req.Data) == 0 {
		return nil, e.ErrNoImage
	}

	if !strings.HasPrefix(req.ContentType, "image/") {
		return nil, e.ErrUnsupportedMediaType
	}

	topN, err := normalizeTopN(req.TopN)
	if err != nil {
		return nil, err
	}

	enc, err := s.encoder.EncodeImage(ctx, req.Data, req.ContentType)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	results, err := s.searchAndFormat(ctx, enc, topN)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &SearchRes{
		QueryType: "image",
		QueryContent: map[string]any{
			"filename":     req.Filename,
			"content_type": req.ContentType,
			"top_n":        topN,
		},
		Results: results,
	}, nil
}

// searchAndFormat нормализует вектор запроса, выполняет top-K поиск и собирает выдачу.
func (s *SearchUseCase) searchAndFormat(ctx context.Context, enc *EncodeRes, topN int) ([]Suggestion, error) {
	if enc == nil || len(enc.Vector) == 0 {
		return nil, e.ErrEmptyVector
	}

	// Та же нормализация, что и при ингестии: запрос и индекс живут
	// в одном единично-нормированном пространстве.
	vector := l2Normalize(enc.Vector)

	hits, err := s.points.Search(ctx, vector, topN)
	if err != nil {
		return nil, err
	}

	return s.formatSuggestions(hits, topN), nil
}

// formatSuggestions присваивает хитам 1-based ранги в порядке, возвращенном индексом,
// и достраивает публичные URL изображений. Score передается без изменений.
func (s *SearchUseCase) formatSuggestions(hits []domain.SearchHit, topN int) []Suggestion {
	if len(hits) > topN {
		hits = hits[:topN]
	}

	suggestions := make([]Suggestion, 0, len(hits))
	for i, hit := range hits {
		suggestions = append(suggestions, Suggestion{
			Rank:      i + 1,
			ProductID: hit.ProductID,
			Name:      hit.Name,
			Category:  hit.Category,
			Score:     hit.Score,
			ImageURL:  s.imageURL(hit.ProductID),
		})
	}

	return suggestions
}

// imageURL возвращает публичный URL изображения товара.
// URL строится только при наличии и базового URL хранилища, и ID товара.
func (s *SearchUseCase) imageURL(productID *string) *string {
	if s.storage.BaseURL == "" || productID == nil || *productID == "" {
		return nil
	}

	url := s.storage.BaseURL + "/" + *productID + imageURLExtension
	return &url
}

// normalizeTopN подставляет значение по умолчанию и проверяет допустимый диапазон
func normalizeTopN(topN int) (int, error) {
	if topN == 0 {
		return TopNDefault, nil
	}

	if topN < 1 || topN > topNMax {
		return 0, e.ErrInvalidTopN
	}

	return topN, nil
}
