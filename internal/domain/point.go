package domain

import "hash/fnv"

// Payload описывает дополнительную информацию вектора
type Payload map[string]any

// IndexPoint описывает запись в Qdrant
type IndexPoint struct {
	ID      uint64
	Vector  []float32
	Payload Payload
}

func NewIndexPoint(id uint64, vector []float32, payload Payload) *IndexPoint {
	return &IndexPoint{
		ID:      id,
		Vector:  vector,
		Payload: payload,
	}
}

// PointID детерминированно выводит идентификатор точки из строкового ID товара
// (FNV-64a). Идентичность точки не зависит от порядка строк во входном массиве;
// повторная ингестия того же товара даёт тот же ID.
func PointID(productID string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(productID))
	return h.Sum64()
}

// NewPointPayload собирает payload точки из записи каталога
func NewPointPayload(rec CatalogRecord) Payload {
	return Payload{
		"product_id_str":     rec.ProductID,
		"productDisplayName": rec.DisplayName,
		"masterCategory":     rec.MasterCategory,
	}
}
