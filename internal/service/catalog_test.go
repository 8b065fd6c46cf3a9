package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shivgems/internal/db"
	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/metrics"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type fakeIndex struct {
	docs      map[uuid.UUID]models.Product
	searchErr error
	putErr    error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[uuid.UUID]models.Product{}}
}

func (f *fakeIndex) Put(_ context.Context, p models.Product) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.docs[p.ID] = p
	return nil
}

func (f *fakeIndex) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) Search(context.Context, string, int, int) (int64, []models.Product, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	out := make([]models.Product, 0, len(f.docs))
	for _, p := range f.docs {
		out = append(out, p)
	}
	return int64(len(out)), out, nil
}

func TestSampleProducts(t *testing.T) {
	samples := SampleProducts()
	require.Len(t, samples, 9)

	seen := map[uuid.UUID]bool{}
	for _, p := range samples {
		assert.False(t, seen[p.ID], "duplicate id for %s", p.Name)
		seen[p.ID] = true
		assert.True(t, p.Price.IsPositive())
		assert.NotEmpty(t, p.Image)
	}
	assert.Equal(t, samples[0].ID, SampleProducts()[0].ID, "ids are deterministic")
}

func TestCatalogList(t *testing.T) {
	t.Run("empty store falls back", func(t *testing.T) {
		svc := &CatalogService{Repo: newRepo(t)}
		got := svc.List(context.Background(), 1, 20)
		assert.Equal(t, SourceFallback, got.Source)
		assert.Len(t, got.Products, 9)
		assert.EqualValues(t, 9, got.Meta.Total)
	})

	t.Run("store error falls back", func(t *testing.T) {
		r := newRepo(t)
		seedProduct(t, r, "ring", "10", 1)
		require.NoError(t, db.Close(r.DB))

		m := metrics.New(prometheus.NewRegistry())
		svc := &CatalogService{Repo: r, Metrics: m}
		got := svc.List(context.Background(), 1, 20)
		assert.Equal(t, SourceFallback, got.Source)
		assert.Len(t, got.Products, 9)
	})

	t.Run("fallback page past the end is empty", func(t *testing.T) {
		svc := &CatalogService{Repo: newRepo(t)}
		got := svc.List(context.Background(), 5, 4)
		assert.Equal(t, SourceFallback, got.Source)
		assert.Empty(t, got.Products)
		assert.False(t, got.Meta.HasNext)
	})

	t.Run("huge page does not overflow", func(t *testing.T) {
		svc := &CatalogService{Repo: newRepo(t)}
		got := svc.List(context.Background(), 922337203685477581, 0)
		assert.Equal(t, SourceFallback, got.Source)
		assert.Empty(t, got.Products)
		assert.EqualValues(t, 9, got.Meta.Total)
	})

	t.Run("live data is never mixed with samples", func(t *testing.T) {
		r := newRepo(t)
		p := seedProduct(t, r, "ring", "10", 1)
		svc := &CatalogService{Repo: r}

		got := svc.List(context.Background(), 1, 20)
		assert.Equal(t, SourceLive, got.Source)
		require.Len(t, got.Products, 1)
		assert.Equal(t, p.ID, got.Products[0].ID)
	})
}

func TestCatalogGet(t *testing.T) {
	r := newRepo(t)
	svc := &CatalogService{Repo: r}
	live := seedProduct(t, r, "ring", "10", 1)
	ctx := context.Background()

	res, err := svc.Get(ctx, live.ID.String())
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)

	sample := SampleProducts()[3]
	res, err = svc.Get(ctx, sample.ID.String())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
	assert.Equal(t, sample.Name, res.Product.Name)

	_, err = svc.Get(ctx, "1")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, db.Close(r.DB))
	_, err = svc.Get(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUnavailable)
	res, err = svc.Get(ctx, sample.ID.String())
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, res.Source)
}

func TestCatalogWrites_SyncIndexAndEvents(t *testing.T) {
	r := newRepo(t)
	idx := newFakeIndex()
	rec := &events.Recorder{}
	svc := &CatalogService{Repo: r, Index: idx, Events: rec}
	ctx := context.Background()

	prod, err := svc.Create(ctx, transport.CreateProductRequest{
		Name: " Jade Bangle ", Description: "green", Image: "/j.jpg",
		Price: decPtr("120.456"), Stock: intPtr(4),
	})
	require.NoError(t, err)
	assert.Equal(t, "Jade Bangle", prod.Name)
	assert.True(t, decimal.RequireFromString("120.46").Equal(prod.Price))
	assert.Contains(t, idx.docs, prod.ID)

	name := "Jade Cuff"
	upd, err := svc.Update(ctx, prod.ID.String(), transport.PatchProductRequest{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Jade Cuff", upd.Name)
	assert.Equal(t, 4, upd.Stock)
	assert.Equal(t, "Jade Cuff", idx.docs[prod.ID].Name)

	require.NoError(t, svc.Delete(ctx, prod.ID.String()))
	assert.NotContains(t, idx.docs, prod.ID)

	assert.Equal(t, []string{"product_created", "product_updated", "product_deleted"}, rec.Types(events.TopicProduct))
}

func TestCatalogWrites_Validation(t *testing.T) {
	svc := &CatalogService{Repo: newRepo(t)}
	ctx := context.Background()

	_, err := svc.Create(ctx, transport.CreateProductRequest{Name: "x", Description: "y", Image: "z", Price: decPtr("-1"), Stock: intPtr(1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, transport.CreateProductRequest{Name: "x", Description: "y", Image: "z", Price: decPtr("1"), Stock: intPtr(-1)})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Create(ctx, transport.CreateProductRequest{Name: " ", Description: "y", Image: "z", Price: decPtr("1"), Stock: intPtr(1)})
	assert.ErrorIs(t, err, ErrValidation)

	empty := ""
	_, err = svc.Update(ctx, uuid.NewString(), transport.PatchProductRequest{Name: &empty})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.Update(ctx, uuid.NewString(), transport.PatchProductRequest{Stock: intPtr(2)})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "nope"), ErrNotFound)
}

func TestCatalogWrites_IndexFailureIsNotFatal(t *testing.T) {
	idx := newFakeIndex()
	idx.putErr = errors.New("es down")
	svc := &CatalogService{Repo: newRepo(t), Index: idx}

	_, err := svc.Create(context.Background(), transport.CreateProductRequest{
		Name: "x", Description: "y", Image: "z", Price: decPtr("1"), Stock: intPtr(1),
	})
	require.NoError(t, err)
}

func TestCatalogSearch(t *testing.T) {
	r := newRepo(t)
	seedProduct(t, r, "Ruby Ring", "10", 1)
	seedProduct(t, r, "Pearl Drop", "10", 1)
	ctx := context.Background()

	t.Run("sql without index", func(t *testing.T) {
		svc := &CatalogService{Repo: r}
		total, items, err := svc.Search(ctx, "RUBY", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		assert.Equal(t, "Ruby Ring", items[0].Name)
	})

	t.Run("index answers", func(t *testing.T) {
		idx := newFakeIndex()
		doc := models.Product{ID: uuid.New(), Name: "Indexed"}
		idx.docs[doc.ID] = doc
		svc := &CatalogService{Repo: r, Index: idx}

		_, items, err := svc.Search(ctx, "anything", 1, 10)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Indexed", items[0].Name)
	})

	t.Run("index failure falls back to sql", func(t *testing.T) {
		idx := newFakeIndex()
		idx.searchErr = errors.New("es down")
		svc := &CatalogService{Repo: r, Index: idx}

		total, _, err := svc.Search(ctx, "pearl", 1, 10)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("blank query", func(t *testing.T) {
		svc := &CatalogService{Repo: r}
		_, _, err := svc.Search(ctx, "  ", 1, 10)
		assert.ErrorIs(t, err, ErrValidation)
	})
}
