package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatlore/chatlore/internal/core/domain"
)

func newTestServer(t *testing.T, dims int, failures *int32) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/tags" {
			w.WriteHeader(http.StatusOK)
			return
		}

		if failures != nil && atomic.AddInt32(failures, -1) >= 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		embedding := make([]float64, dims)
		for i := range embedding {
			embedding[i] = float64(i)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embedding": embedding})
	}))
}

func TestEmbed(t *testing.T) {
	srv := newTestServer(t, 4, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 4})

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 2, 3}, embedding)
}

func TestEmbedRetriesTransientFailure(t *testing.T) {
	failures := int32(2)
	srv := newTestServer(t, 4, &failures)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 4})

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Len(t, embedding, 4)
}

func TestEmbedDimensionMismatch(t *testing.T) {
	srv := newTestServer(t, 4, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 8})

	_, err := svc.Embed(context.Background(), "hello")
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestEmbedBatchPreservesOrder(t *testing.T) {
	srv := newTestServer(t, 4, nil)
	defer srv.Close()

	svc := NewEmbeddingService(Config{BaseURL: srv.URL, Dimensions: 4})

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
}

func TestPingUnavailable(t *testing.T) {
	svc := NewEmbeddingService(Config{BaseURL: "http://127.0.0.1:1"})

	err := svc.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}
