package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/metrics"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/transport"
	"github.com/Skotchmaster/shivgems/internal/util"
)

type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Listing is either live store data or the sample catalog, never a mix.
type Listing struct {
	Source   Source
	Products []models.Product
	Meta     util.PageMeta
}

type ProductResult struct {
	Source  Source
	Product models.Product
}

type ProductIndex interface {
	Put(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo    *repo.GormRepo
	Index   ProductIndex
	Events  events.Publisher
	Metrics *metrics.Metrics
}

func (s *CatalogService) fallback(page, size int) Listing {
	s.Metrics.RecordCatalogFallback()

	all := SampleProducts()
	page, offset, limit := util.Calculate(page, size)
	end := offset + limit
	if offset < 0 || end < offset {
		offset, end = len(all), len(all)
	}
	if offset > len(all) {
		offset = len(all)
	}
	if end > len(all) {
		end = len(all)
	}
	return Listing{
		Source:   SourceFallback,
		Products: all[offset:end],
		Meta:     util.Meta(page, limit, int64(len(all))),
	}
}

func (s *CatalogService) List(ctx context.Context, page, size int) Listing {
	l := logging.FromContext(ctx).With("svc", "catalog.list")

	p, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListProducts(ctx, offset, limit)
	if err != nil {
		l.Warn("catalog_fallback", "reason", "store error", "error", err)
		return s.fallback(page, size)
	}
	if total == 0 {
		l.Info("catalog_fallback", "reason", "store empty")
		return s.fallback(page, size)
	}

	return Listing{Source: SourceLive, Products: items, Meta: util.Meta(p, limit, total)}
}

func (s *CatalogService) Get(ctx context.Context, rawID string) (*ProductResult, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	prod, err := s.Repo.GetProduct(ctx, id)
	if err == nil {
		return &ProductResult{Source: SourceLive, Product: *prod}, nil
	}

	if sample, ok := sampleByID(id); ok {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.FromContext(ctx).Warn("catalog_fallback", "reason", "store error", "error", err)
		}
		s.Metrics.RecordCatalogFallback()
		return &ProductResult{Source: SourceFallback, Product: sample}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product store: %v", ErrUnavailable, err)
	}
	return nil, fmt.Errorf("%w: product not found", ErrNotFound)
}

func (s *CatalogService) Search(ctx context.Context, query string, page, size int) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("%w: query required", ErrValidation)
	}
	_, offset, limit := util.Calculate(page, size)

	if s.Index != nil {
		total, items, err := s.Index.Search(ctx, query, offset, limit)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "error", err)
	}
	return s.Repo.SearchProducts(ctx, query, offset, limit)
}

func (s *CatalogService) Create(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	name := strings.TrimSpace(req.Name)
	description := strings.TrimSpace(req.Description)
	image := strings.TrimSpace(req.Image)
	if name == "" || description == "" || image == "" || req.Price == nil || req.Stock == nil {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if req.Price.IsNegative() {
		return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
	}
	if *req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	prod := &models.Product{
		Name:        name,
		Description: description,
		Price:       req.Price.Round(2),
		Image:       image,
		Stock:       *req.Stock,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) Update(ctx context.Context, rawID string, req transport.PatchProductRequest) (*models.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	patch := repo.ProductPatch{
		Description: req.Description,
		Image:       req.Image,
		Stock:       req.Stock,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		patch.Name = &name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, fmt.Errorf("%w: price cannot be negative", ErrValidation)
		}
		price := req.Price.Round(2)
		patch.Price = &price
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	prod, err := s.Repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		return nil, notFound(err, "product not found")
	}

	s.afterWrite(ctx, "product_updated", prod)
	return prod, nil
}

func (s *CatalogService) Delete(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: product not found", ErrNotFound)
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product not found")
	}

	if s.Index != nil {
		if err := s.Index.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProduct, id.String(), events.Event{
		Type:      "product_deleted",
		ProductID: id.String(),
	})
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, prod *models.Product) {
	if s.Index != nil {
		if err := s.Index.Put(ctx, *prod); err != nil {
			logging.FromContext(ctx).Warn("search_index_put_failed", "product_id", prod.ID, "error", err)
		}
	}
	events.Emit(ctx, s.Events, events.TopicProduct, prod.ID.String(), events.Event{
		Type:      eventType,
		ProductID: prod.ID.String(),
		Data:      map[string]any{"name": prod.Name, "price": prod.Price, "stock": prod.Stock},
	})
}
