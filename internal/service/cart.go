package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type CartService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Pricing Pricing
}

func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return s.Repo.GetCart(ctx, userID)
}

// AddToCart reports created=false when an existing row was incremented.
func (s *CartService) AddToCart(ctx context.Context, userID uuid.UUID, req transport.AddToCartRequest) (*models.CartItem, bool, error) {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: product not found", ErrNotFound)
	}

	qty := 1
	if req.Quantity != nil && *req.Quantity != 0 {
		qty = *req.Quantity
	}
	if qty < 1 {
		return nil, false, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, false, notFound(err, "product not found")
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	created, err := s.Repo.AddToCart(ctx, item)
	if err != nil {
		return nil, false, err
	}

	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), events.Event{
		Type:      "cart_item_added",
		UserID:    userID.String(),
		ProductID: productID.String(),
		Data:      map[string]any{"quantity": qty},
	})
	return item, created, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID uuid.UUID, rawID string, qty int) (*models.CartItem, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: cart item not found", ErrNotFound)
	}
	if qty < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}

	item, err := s.Repo.UpdateCartItem(ctx, userID, id, qty)
	if err != nil {
		return nil, notFound(err, "cart item not found")
	}

	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), events.Event{
		Type:      "cart_item_updated",
		UserID:    userID.String(),
		ProductID: item.ProductID.String(),
		Data:      map[string]any{"quantity": qty},
	})
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: cart item not found", ErrNotFound)
	}
	if err := s.Repo.RemoveCartItem(ctx, userID, id); err != nil {
		return notFound(err, "cart item not found")
	}

	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), events.Event{
		Type:   "cart_item_removed",
		UserID: userID.String(),
		Data:   map[string]any{"cartItemId": id.String()},
	})
	return nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.Repo.ClearCart(ctx, userID); err != nil {
		return err
	}
	events.Emit(ctx, s.Events, events.TopicCart, userID.String(), events.Event{
		Type:   "cart_cleared",
		UserID: userID.String(),
	})
	return nil
}

func (s *CartService) Summary(ctx context.Context, userID uuid.UUID) (*transport.CartSummary, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	subtotal := decimal.Zero
	count := 0
	for _, it := range items {
		count += it.Quantity
		if it.Product == nil {
			continue
		}
		subtotal = subtotal.Add(it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	shipping, tax, total := s.Pricing.Quote(subtotal)

	return &transport.CartSummary{
		Items:     items,
		ItemCount: count,
		Subtotal:  subtotal,
		Shipping:  shipping,
		Tax:       tax,
		Total:     total,
	}, nil
}
