package minio

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/domain"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/minio/minio-go/v7"
	"github.com/sbinet/npyio"
)

// DatasetRepo читает offline-входы ингестии (выгрузки эмбеддингов .npy и
// каталог CSV) из бакета MinIO/S3.
type DatasetRepo struct {
	mc     *minio.Client
	cfg    *cfg.MinIOCfg
	logger logger.Logger
}

func NewDatasetRepo(mc *minio.Client, cfg *cfg.MinIOCfg, logger logger.Logger) *DatasetRepo {
	return &DatasetRepo{
		mc:     mc,
		cfg:    cfg,
		logger: logger,
	}
}

// Load загружает и парсит все входы ингестии. Недоступность эмбеддингов или
// массива ID фатальна; недоступность каталога — нет (метаданные заменяются
// плейсхолдерами, как и при отсутствии отдельной записи).
func (d *DatasetRepo) Load(ctx context.Context) (*usecase.Dataset, error) {
	image, err := d.loadMatrix(ctx, d.cfg.ImageEmbeddingsKey)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	text, err := d.loadMatrix(ctx, d.cfg.TextEmbeddingsKey)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ids, err := d.loadProductIDs(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := d.loadCatalog(ctx)
	if err != nil {
		d.logger.Warnf("failed to load product catalog, proceeding with placeholder metadata: %v", err)
		catalog = domain.Catalog{}
	}

	return usecase.NewDataset(image, text, ids, catalog), nil
}

func (d *DatasetRepo) loadMatrix(ctx context.Context, key string) (*domain.EmbeddingMatrix, error) {
	obj, err := d.mc.GetObject(ctx, d.cfg.BucketName, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return parseMatrix(obj)
}

func (d *DatasetRepo) loadProductIDs(ctx context.Context) ([]string, error) {
	obj, err := d.mc.GetObject(ctx, d.cfg.BucketName, d.cfg.ProductIDsKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return parseProductIDs(obj)
}

func (d *DatasetRepo) loadCatalog(ctx context.Context) (domain.Catalog, error) {
	obj, err := d.mc.GetObject(ctx, d.cfg.BucketName, d.cfg.CatalogKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	return parseCatalog(obj)
}

// parseMatrix читает двумерный .npy массив float32/float64 в матрицу эмбеддингов
func parseMatrix(r io.Reader) (*domain.EmbeddingMatrix, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	// Только C-order: column-major массив прочитался бы транспонированным
	if npy.Header.Descr.Fortran {
		return nil, e.ErrBadEmbeddingsFile
	}

	shape := npy.Header.Descr.Shape
	if len(shape) != 2 {
		return nil, e.ErrBadEmbeddingsFile
	}
	rows, cols := shape[0], shape[1]

	flat, err := readFloats(npy, rows*cols)
	if err != nil {
		return nil, err
	}

	data := make([][]float32, rows)
	for i := 0; i < rows; i++ {
		data[i] = flat[i*cols : (i+1)*cols]
	}

	return domain.NewEmbeddingMatrix(data), nil
}

// readFloats читает массив как float32, конвертируя из float64 при необходимости
func readFloats(npy *npyio.Reader, n int) ([]float32, error) {
	if strings.Contains(npy.Header.Descr.Type, "f8") {
		raw := make([]float64, n)
		if err := npy.Read(&raw); err != nil {
			return nil, err
		}

		flat := make([]float32, n)
		for i, v := range raw {
			flat[i] = float32(v)
		}
		return flat, nil
	}

	flat := make([]float32, n)
	if err := npy.Read(&flat); err != nil {
		return nil, err
	}

	return flat, nil
}

// parseProductIDs читает одномерный .npy массив целочисленных ID и приводит
// их к строковому виду, в котором они участвуют в payload и join с каталогом
func parseProductIDs(r io.Reader) ([]string, error) {
	npy, err := npyio.NewReader(r)
	if err != nil {
		return nil, err
	}

	var raw []int64
	if err := npy.Read(&raw); err != nil {
		return nil, err
	}

	ids := make([]string, len(raw))
	for i, id := range raw {
		ids[i] = strconv.FormatInt(id, 10)
	}

	return ids, nil
}

// parseCatalog парсит каталог товаров из CSV. Строки с неожиданным числом
// полей пропускаются, а не валят загрузку (в исходных данных такие есть).
func parseCatalog(r io.Reader) (domain.Catalog, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, err
	}

	idIdx, nameIdx, categoryIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "id":
			idIdx = i
		case "productDisplayName":
			nameIdx = i
		case "masterCategory":
			categoryIdx = i
		}
	}
	if idIdx < 0 {
		return nil, e.ErrBadCatalogFile
	}

	catalog := domain.Catalog{}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // malformed row
		}
		if idIdx >= len(row) || strings.TrimSpace(row[idIdx]) == "" {
			continue
		}

		catalog[strings.TrimSpace(row[idIdx])] = *domain.NewCatalogRecord(
			strings.TrimSpace(row[idIdx]),
			columnOrPlaceholder(row, nameIdx, domain.PlaceholderValue),
			columnOrPlaceholder(row, categoryIdx, domain.PlaceholderValue),
		)
	}

	return catalog, nil
}

// columnOrPlaceholder возвращает значение колонки либо плейсхолдер
func columnOrPlaceholder(row []string, idx int, placeholder string) string {
	if idx < 0 || idx >= len(row) || strings.TrimSpace(row[idx]) == "" {
		return placeholder
	}

	return strings.TrimSpace(row[idx])
}
