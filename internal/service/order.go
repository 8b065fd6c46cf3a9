package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/idempotency"
	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/metrics"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type OrderService struct {
	Repo    *repo.GormRepo
	Events  events.Publisher
	Idem    idempotency.Store
	Metrics *metrics.Metrics
}

type orderLine struct {
	productID uuid.UUID
	quantity  int
}

// mergeLines folds repeated products into one line, keeping first-seen order.
func mergeLines(in []orderLine) []orderLine {
	idx := make(map[uuid.UUID]int, len(in))
	out := make([]orderLine, 0, len(in))
	for _, ln := range in {
		if i, ok := idx[ln.productID]; ok {
			out[i].quantity += ln.quantity
			continue
		}
		idx[ln.productID] = len(out)
		out = append(out, ln)
	}
	return out
}

func requestedLines(items []transport.CreateOrderItem) ([]orderLine, error) {
	lines := make([]orderLine, 0, len(items))
	for _, it := range items {
		id, err := uuid.Parse(it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %q not found", ErrNotFound, it.ProductID)
		}
		if it.Quantity < 1 {
			return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
		}
		lines = append(lines, orderLine{productID: id, quantity: it.Quantity})
	}
	return mergeLines(lines), nil
}

// CreateOrder prices every line from the store, never from the request.
// Without req.Items the caller's cart is ordered and cleared in the same transaction.
func (s *OrderService) CreateOrder(ctx context.Context, userID uuid.UUID, req transport.CreateOrderRequest, idemKey string) (order *models.Order, err error) {
	l := logging.FromContext(ctx).With("svc", "order.create", "user_id", userID)
	defer func() { s.Metrics.RecordOrderOperation("create", err == nil) }()

	if req.TotalAmount != nil && !req.TotalAmount.IsPositive() {
		return nil, fmt.Errorf("%w: invalid total amount", ErrValidation)
	}

	fromCart := req.Items == nil
	var lines []orderLine
	if !fromCart {
		if len(req.Items) == 0 {
			return nil, fmt.Errorf("%w: no items provided", ErrValidation)
		}
		if lines, err = requestedLines(req.Items); err != nil {
			return nil, err
		}
	}

	if idemKey != "" && s.Idem != nil {
		key := "order:" + userID.String() + ":" + idemKey
		claimed, cerr := s.Idem.Claim(ctx, key)
		if cerr != nil {
			return nil, fmt.Errorf("%w: idempotency store: %v", ErrUnavailable, cerr)
		}
		if !claimed {
			return nil, fmt.Errorf("%w: duplicate request", ErrConflict)
		}
		defer func() {
			if err == nil {
				return
			}
			if rerr := s.Idem.Release(context.WithoutCancel(ctx), key); rerr != nil {
				l.Warn("idempotency_release_failed", "error", rerr)
			}
		}()
	}

	order = &models.Order{
		UserID:          userID,
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Status:          models.OrderStatusPending,
		Source:          models.OrderSourceItems,
	}
	if fromCart {
		order.Status = models.OrderStatusCompleted
		order.Source = models.OrderSourceCart
	}

	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		if fromCart {
			cart, err := tx.GetCart(ctx, userID)
			if err != nil {
				return err
			}
			if len(cart) == 0 {
				return fmt.Errorf("%w: cart is empty", ErrValidation)
			}
			for _, it := range cart {
				lines = append(lines, orderLine{productID: it.ProductID, quantity: it.Quantity})
			}
			lines = mergeLines(lines)
		}

		ids := make([]uuid.UUID, len(lines))
		for i, ln := range lines {
			ids[i] = ln.productID
		}
		products, err := tx.GetProductsByIDs(ctx, ids)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, ln := range lines {
			p, ok := products[ln.productID]
			if !ok {
				return fmt.Errorf("%w: product %s not found", ErrNotFound, ln.productID)
			}
			reserved, err := tx.DecrementStock(ctx, p.ID, ln.quantity)
			if err != nil {
				return err
			}
			if !reserved {
				return fmt.Errorf("%w: insufficient stock for %s", ErrConflict, p.Name)
			}

			item := models.OrderItem{ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: ln.quantity}
			total = total.Add(item.LineTotal())
			order.Items = append(order.Items, item)
		}
		if !total.IsPositive() {
			return fmt.Errorf("%w: order total must be positive", ErrValidation)
		}
		order.TotalAmount = total

		if err := tx.CreateOrder(ctx, order); err != nil {
			return err
		}
		if fromCart {
			return tx.ClearCart(ctx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.TotalAmount != nil && !req.TotalAmount.Equal(order.TotalAmount) {
		l.Warn("client_total_mismatch", "client_total", req.TotalAmount.String(), "total", order.TotalAmount.String())
	}
	l.Info("order_created", "order_id", order.ID, "total", order.TotalAmount.String(), "source", order.Source)

	events.Emit(ctx, s.Events, events.TopicOrder, order.ID.String(), events.Event{
		Type:    "order_created",
		UserID:  userID.String(),
		OrderID: order.ID.String(),
		Data:    map[string]any{"totalAmount": order.TotalAmount, "items": len(order.Items), "source": order.Source},
	})
	return order, nil
}

func (s *OrderService) ListMine(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.Repo.ListOrdersByUser(ctx, userID)
}

func (s *OrderService) GetMine(ctx context.Context, userID uuid.UUID, rawID string) (*models.Order, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	order, err := s.Repo.GetOrderForUser(ctx, userID, id)
	if err != nil {
		return nil, notFound(err, "order not found")
	}
	return order, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListAllOrders(ctx)
}
