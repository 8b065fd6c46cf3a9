package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shivgems/internal/models"
)

type fakeES struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.URL.Path == "/":
		_, _ = w.Write([]byte(`{"version":{"number":"9.0.0"}}`))
	case strings.HasSuffix(r.URL.Path, "/_search"):
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":"` + sampleID.String() + `","name":"Diamond Halo Ring","price":"3499"}}]}}`))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"result":"not_found"}`))
	default:
		_, _ = w.Write([]byte(`{"result":"created"}`))
	}
}

var sampleID = uuid.MustParse("7d4b7c0e-5b7a-4a53-9a55-6c3f0b0d2f11")

func newIndex(t *testing.T) (*ProductIndex, *fakeES) {
	t.Helper()
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{URL: srv.URL})
	require.NoError(t, err)
	return &ProductIndex{ES: client, Index: "products"}, fake
}

func TestProductIndex_Search(t *testing.T) {
	idx, fake := newIndex(t)

	total, prods, err := idx.Search(context.Background(), "halo", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, prods, 1)
	assert.Equal(t, sampleID, prods[0].ID)
	assert.True(t, decimal.NewFromInt(3499).Equal(prods[0].Price))

	var q map[string]any
	require.NoError(t, json.Unmarshal([]byte(fake.bodies[len(fake.bodies)-1]), &q))
	mm := q["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "halo", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}

func TestProductIndex_PutAndDelete(t *testing.T) {
	idx, fake := newIndex(t)
	ctx := context.Background()

	prod := models.Product{ID: sampleID, Name: "Diamond Halo Ring", Price: decimal.NewFromInt(3499)}
	require.NoError(t, idx.Put(ctx, prod))
	require.NoError(t, idx.Delete(ctx, sampleID))

	assert.Contains(t, fake.requests, "PUT /products/_doc/"+sampleID.String())
	assert.Contains(t, fake.requests, "DELETE /products/_doc/"+sampleID.String())
}
