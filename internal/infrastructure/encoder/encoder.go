package encoder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/internal/usecase"
	"github.com/DRSN-tech/fashion-search/pkg/e"
)

// Encoder — клиент внешнего encoder-сервиса (CLIP). Текстовая и image-ветки
// обязаны принадлежать одному чекпоинту модели, которым считались эмбеддинги
// при ингестии — иначе общее векторное пространство ломается.
// Каждый запрос выполняется единственной попыткой: ошибки кодирования
// не ретраятся, а сразу уходят вызывающему одним ответом.
type Encoder struct {
	client *http.Client
	addr   string
	sem    chan struct{} // ограничение одновременных запросов к encoder-сервису
}

type textRequest struct {
	Text string `json:"text"`
}

type encodeResponse struct {
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
}

func NewEncoder(cfg *cfg.EncoderCfg) *Encoder {
	return &Encoder{
		client: &http.Client{Timeout: cfg.RequestTimeout},
		addr:   cfg.Addr,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
	}
}

// Ping проверяет доступность encoder-сервиса. Вызывается на старте:
// недоступный или не прогретый encoder — фатальная ошибка запуска.
func (enc *Encoder) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, enc.addr+"/health", nil)
	if err != nil {
		return err
	}

	resp, err := enc.client.Do(req)
	if err != nil {
		return fmt.Errorf("encoder service unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("encoder service health returned %d", resp.StatusCode)
	}

	return nil
}

// EncodeText векторизует текстовый запрос
func (enc *Encoder) EncodeText(ctx context.Context, text string) (*usecase.EncodeRes, error) {
	const op = "Encoder.EncodeText"

	body, err := json.Marshal(textRequest{Text: text})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	res, err := enc.encodeOnce(ctx, enc.addr+"/encode/text", "application/json", body)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

// EncodeImage векторизует изображение; декодирование в канонический RGB —
// забота encoder-сервиса, сюда приходят сырые байты с их Content-Type.
func (enc *Encoder) EncodeImage(ctx context.Context, data []byte, contentType string) (*usecase.EncodeRes, error) {
	const op = "Encoder.EncodeImage"

	res, err := enc.encodeOnce(ctx, enc.addr+"/encode/image", contentType, data)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return res, nil
}

func (enc *Encoder) encodeOnce(ctx context.Context, url, contentType string, body []byte) (*usecase.EncodeRes, error) {
	select {
	case enc.sem <- struct{}{}:
		defer func() { <-enc.sem }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := enc.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("encoder service returned %d: %s", resp.StatusCode, payload)
	}

	var decoded encodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	if len(decoded.Vector) == 0 {
		return nil, e.ErrEmptyVector
	}

	return usecase.NewEncodeRes(decoded.Vector, decoded.ModelVersion), nil
}
