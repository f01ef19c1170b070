package domain

const (
	// PlaceholderName подставляется вместо названия товара, отсутствующего в каталоге
	PlaceholderName = "N/A (Not in Catalog)"
	// PlaceholderCategory подставляется вместо отсутствующей категории
	PlaceholderCategory = "N/A"
	// PlaceholderValue подставляется вместо пустой ячейки в присутствующей строке каталога
	PlaceholderValue = "N/A"
)

// CatalogRecord описывает метаданные товара из каталога
type CatalogRecord struct {
	ProductID      string
	DisplayName    string
	MasterCategory string
}

func NewCatalogRecord(productID, displayName, masterCategory string) *CatalogRecord {
	return &CatalogRecord{
		ProductID:      productID,
		DisplayName:    displayName,
		MasterCategory: masterCategory,
	}
}

// Catalog — каталог товаров с доступом по строковому ID
type Catalog map[string]CatalogRecord

// Lookup возвращает запись каталога либо запись с плейсхолдерами,
// если товара в каталоге нет. Отсутствие записи не является ошибкой.
func (c Catalog) Lookup(productID string) CatalogRecord {
	if rec, ok := c[productID]; ok {
		return rec
	}

	return CatalogRecord{
		ProductID:      productID,
		DisplayName:    PlaceholderName,
		MasterCategory: PlaceholderCategory,
	}
}
