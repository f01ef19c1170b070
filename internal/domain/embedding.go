package domain

// EmbeddingMatrix — матрица эмбеддингов: по строке на товар, одинаковая размерность строк
type EmbeddingMatrix struct {
	Rows int
	Cols int
	Data [][]float32
}

func NewEmbeddingMatrix(data [][]float32) *EmbeddingMatrix {
	cols := 0
	if len(data) > 0 {
		cols = len(data[0])
	}

	return &EmbeddingMatrix{
		Rows: len(data),
		Cols: cols,
		Data: data,
	}
}

// SameShape проверяет совпадение формы двух матриц
func (m *EmbeddingMatrix) SameShape(other *EmbeddingMatrix) bool {
	return other != nil && m.Rows == other.Rows && m.Cols == other.Cols
}
