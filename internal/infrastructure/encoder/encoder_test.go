package encoder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/fashion-search/internal/cfg"
	"github.com/DRSN-tech/fashion-search/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEncoder(addr string) *Encoder {
	return NewEncoder(&cfg.EncoderCfg{
		Addr:           addr,
		MaxConcurrent:  2,
		RequestTimeout: 5 * time.Second,
	})
}

func TestEncodeText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode/text", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "navy shirt", body["text"])

		json.NewEncoder(w).Encode(map[string]any{
			"vector":        []float32{0.1, 0.2, 0.3},
			"model_version": "clip-vit-b32",
		})
	}))
	defer srv.Close()

	res, err := newTestEncoder(srv.URL).EncodeText(context.Background(), "navy shirt")
	require.NoError(t, err)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, res.Vector)
	assert.Equal(t, "clip-vit-b32", res.ModelVersion)
}

func TestEncodeImage(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/encode/image", r.URL.Path)
		assert.Equal(t, "image/jpeg", r.Header.Get("Content-Type"))

		got, _ := io.ReadAll(r.Body)
		assert.Equal(t, payload, got)

		json.NewEncoder(w).Encode(map[string]any{"vector": []float32{1, 0}})
	}))
	defer srv.Close()

	res, err := newTestEncoder(srv.URL).EncodeImage(context.Background(), payload, "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, []float32{1, 0}, res.Vector)
}

func TestEncode_FailureIsSingleAttempt(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	start := time.Now()
	_, err := newTestEncoder(srv.URL).EncodeText(context.Background(), "shirt")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	// Ошибка уходит вызывающему сразу, без скрытых повторов и пауз
	assert.Equal(t, 1, attempts)
	assert.Less(t, elapsed, time.Second)
}

func TestEncode_EmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"vector": []float32{}})
	}))
	defer srv.Close()

	_, err := newTestEncoder(srv.URL).EncodeText(context.Background(), "shirt")

	assert.ErrorIs(t, err, e.ErrEmptyVector)
}

func TestEncode_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"vector": []float32{1}})
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestEncoder(srv.URL).EncodeText(ctx, "shirt")

	require.Error(t, err)
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, newTestEncoder(srv.URL).Ping(context.Background()))
}

func TestPing_NotReady(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "loading model", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestEncoder(srv.URL).Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestPing_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	err := newTestEncoder(srv.URL).Ping(context.Background())

	assert.Error(t, err)
}
