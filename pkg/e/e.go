package e

import "fmt"

var (
	// Внутренние ошибки ингестии
	ErrEmptyEmbeddings      = fmt.Errorf("empty embeddings")
	ErrShapeMismatch        = fmt.Errorf("image and text embeddings must have same shape")
	ErrProductCountMismatch = fmt.Errorf("number of embeddings and product ids must match")
	ErrIngestionAborted     = fmt.Errorf("ingestion aborted")
	ErrBadEmbeddingsFile    = fmt.Errorf("embeddings file must contain a 2-dimensional array")
	ErrBadCatalogFile       = fmt.Errorf("catalog csv has no id column")

	// Внутренние ошибки поиска
	ErrEmptyVector          = fmt.Errorf("encoder returned empty vector")
	ErrServiceNotReady      = fmt.Errorf("service not ready")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrEmptyQueryText       = fmt.Errorf("query text is required")
	ErrInvalidTopN          = fmt.Errorf("top_n must be between 1 and 20")
	ErrNoImage              = fmt.Errorf("no image provided")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type, upload an image (jpeg, png, webp)")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data request")
	ErrFileTooLarge         = fmt.Errorf("file too large")
	ErrStatusBadRequest     = fmt.Errorf("bad request")

	// 500 Internal Server Error
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}
