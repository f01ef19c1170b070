package http

import (
	"encoding/json"
	"net/http"

	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/DRSN-tech/fashion-search/pkg/logger"
	"github.com/DRSN-tech/fashion-search/pkg/readiness"
)

// SearchHandler обслуживает HTTP-ручки поиска похожих товаров.
type SearchHandler struct {
	searchUC usecase.SearchUC
	state    *readiness.State
	logger   logger.Logger
}

func NewSearchHandler(searchUC usecase.SearchUC, state *readiness.State, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		searchUC: searchUC,
		state:    state,
		logger:   log,
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// health сообщает готовность сервиса принимать поисковые запросы.
func (h *SearchHandler) health(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		WriteError(w, e.ErrServiceNotReady)
		return
	}

	WriteSuccess(w, http.StatusOK, healthResponse{Status: "ok", Message: "API is healthy"})
}

// textSearchRequest: top_n через указатель, чтобы отличить
// отсутствующее поле от явно переданного нуля.
type textSearchRequest struct {
	QueryText string `json:"query_text"`
	TopN      *int   `json:"top_n"`
}

// textToImage ищет товары по текстовому описанию.
func (h *SearchHandler) textToImage(w http.ResponseWriter, r *http.Request) {
	if !h.state.IsReady() {
		WriteError(w, e.ErrServiceNotReady)
		return
	}

	var body textSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.logger.Warnf("text search: malformed request body: %v", err)
		WriteError(w, e.ErrStatusBadRequest)
		return
	}

	topN := 0
	if body.TopN != nil {
		if *body.TopN == 0 {
			WriteError(w, e.ErrInvalidTopN)
			return
		}
		topN = *body.TopN
	}

	res, err := h.searchUC.SearchByText(r.Context(), usecase.NewTextSearchReq(body.QueryText, topN))
	if err != nil {
		h.logger.Errorf(err, "text search failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}

// imageToImage ищет товары по загруженному изображению.
func (h *SearchHandler) imageToImage(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 16 << 20

	if !h.state.IsReady() {
		WriteError(w, e.ErrServiceNotReady)
		return
	}

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("image search: bad multipart form: %v", err)
		WriteError(w, e.ErrExpectedMultipart)
		return
	}

	req, err := parseQueryImage(r)
	if err != nil {
		h.logger.Warnf("image search: %v", err)
		WriteError(w, err)
		return
	}

	topN, err := parseTopNForm(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	req.TopN = topN

	res, err := h.searchUC.SearchByImage(r.Context(), req)
	if err != nil {
		h.logger.Errorf(err, "image search failed")
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, res)
}
