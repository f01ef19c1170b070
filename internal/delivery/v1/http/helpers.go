package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrServiceNotReady):
		return http.StatusServiceUnavailable, e.ErrServiceNotReady.Error()
	case errors.Is(err, e.ErrEmptyQueryText):
		return http.StatusBadRequest, e.ErrEmptyQueryText.Error()
	case errors.Is(err, e.ErrInvalidTopN):
		return http.StatusBadRequest, e.ErrInvalidTopN.Error()
	case errors.Is(err, e.ErrNoImage):
		return http.StatusBadRequest, e.ErrNoImage.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusBadRequest, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusBadRequest, e.ErrFileTooLarge.Error()
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	default:
		// Причина остается в логах, клиенту уходит обезличенный ответ
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}
	return r.ParseMultipartForm(maxMemory)
}

// parseTopNForm parses the optional top_n form field; empty means "use default".
// An explicit zero is rejected here: downstream treats zero as "not provided".
func parseTopNForm(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.FormValue("top_n"))
	if raw == "" {
		return 0, nil
	}

	topN, err := strconv.Atoi(raw)
	if err != nil || topN == 0 {
		return 0, e.ErrInvalidTopN
	}

	return topN, nil
}

// parseQueryImage extracts the uploaded query image from the multipart form.
// The part's declared Content-Type is kept as-is: rejecting non-image uploads
// happens downstream before any encoding work.
func parseQueryImage(r *http.Request) (*usecase.ImageSearchReq, error) {
	const maxFileSize = 15 << 20

	files := r.MultipartForm.File["query_image"]
	if len(files) == 0 {
		return nil, e.ErrNoImage
	}

	fh := files[0]
	data, err := readFile(fh, maxFileSize)
	if err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}

	return usecase.NewImageSearchReq(data, contentType, fh.Filename, 0), nil
}

func readFile(fh *multipart.FileHeader, maxSize int64) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, e.ErrInternalServerError
	}
	if int64(len(data)) > maxSize {
		return nil, e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	return data, nil
}
