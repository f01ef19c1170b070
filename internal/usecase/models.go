package usecase

import "github.com/DRSN-tech/fashion-search/internal/domain"

// SEARCH USECASE

// TextSearchReq — текстовый поисковый запрос.
type TextSearchReq struct {
	QueryText string
	TopN      int
}

// ImageSearchReq — поисковый запрос по изображению, загруженному через multipart/form-data.
type ImageSearchReq struct {
	Data        []byte // байты изображения
	ContentType string // Content-Type из multipart (image/jpeg)
	Filename    string // оригинальное имя файла (для логов и ответа)
	TopN        int
}

// Suggestion — один ранжированный результат выдачи.
type Suggestion struct {
	Rank      int     `json:"rank"`
	ProductID *string `json:"productIdStr"`
	Name      *string `json:"name"`
	Category  *string `json:"category"`
	Score     float32 `json:"score"`
	ImageURL  *string `json:"imageUrl"`
}

// SearchRes — ответ на поисковый запрос любой модальности.
type SearchRes struct {
	QueryType    string         `json:"queryType"`
	QueryContent map[string]any `json:"queryContent"`
	Results      []Suggestion   `json:"results"`
}

// INFRASTRUCTURE

// EncodeRes — результат векторизации запроса encoder-сервисом.
type EncodeRes struct {
	Vector       []float32
	ModelVersion string
}

// INGEST USECASE

// Dataset — offline-входы построения индекса.
type Dataset struct {
	ImageEmbeddings *domain.EmbeddingMatrix
	TextEmbeddings  *domain.EmbeddingMatrix
	ProductIDs      []string
	Catalog         domain.Catalog
}

// IngestReport — итог прогона ингестии.
type IngestReport struct {
	RunID            string
	Collection       string
	PointsPlanned    int
	BatchesCommitted int
	PointsCount      uint64
}

// MAPPERS

func NewTextSearchReq(queryText string, topN int) *TextSearchReq {
	return &TextSearchReq{
		QueryText: queryText,
		TopN:      topN,
	}
}

func NewImageSearchReq(data []byte, contentType string, filename string, topN int) *ImageSearchReq {
	return &ImageSearchReq{
		Data:        data,
		ContentType: contentType,
		Filename:    filename,
		TopN:        topN,
	}
}

func NewEncodeRes(vector []float32, modelVersion string) *EncodeRes {
	return &EncodeRes{
		Vector:       vector,
		ModelVersion: modelVersion,
	}
}

func NewDataset(image, text *domain.EmbeddingMatrix, productIDs []string, catalog domain.Catalog) *Dataset {
	return &Dataset{
		ImageEmbeddings: image,
		TextEmbeddings:  text,
		ProductIDs:      productIDs,
		Catalog:         catalog,
	}
}
