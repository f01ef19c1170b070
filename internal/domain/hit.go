package domain

// SearchHit — один результат поиска по индексу в порядке убывания score.
// Поля payload опциональны: точка могла быть записана без части метаданных.
type SearchHit struct {
	Score     float32
	ProductID *string
	Name      *string
	Category  *string
}

func NewSearchHit(score float32, productID, name, category *string) *SearchHit {
	return &SearchHit{
		Score:     score,
		ProductID: productID,
		Name:      name,
		Category:  category,
	}
}
