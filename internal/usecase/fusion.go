package usecase

import (
	"math"

	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/pkg/e"
)

// Fuse объединяет image- и text-эмбеддинги взвешенным средним и приводит
// каждую строку к единичной длине. Форма матриц обязана совпадать; результат
// остается совместимым с cosine-поиском и с эмбеддингами запросов любой модальности.
func Fuse(image, text *domain.EmbeddingMatrix, imageWeight, textWeight float32) ([][]float32, error) {
	if image == nil || text == nil || image.Rows == 0 {
		return nil, e.ErrEmptyEmbeddings
	}

	if !image.SameShape(text) {
		return nil, e.ErrShapeMismatch
	}

	fused := make([][]float32, image.Rows)
	for i := 0; i < image.Rows; i++ {
		row := make([]float32, image.Cols)
		for j := 0; j < image.Cols; j++ {
			row[j] = imageWeight*image.Data[i][j] + textWeight*text.Data[i][j]
		}
		fused[i] = l2Normalize(row)
	}

	return fused, nil
}

// l2Normalize приводит вектор к единичной L2-норме
func l2Normalize(vec []float32) []float32 {
	var sum float32
	for _, v := range vec {
		sum += v * v
	}
	norm := float32(math.Sqrt(float64(sum))) + 1e-12

	result := make([]float32, len(vec))
	for i, v := range vec {
		result[i] = v / norm
	}

	return result
}
