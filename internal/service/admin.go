package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
)

type AdminService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

func (s *AdminService) Dashboard(ctx context.Context) (repo.DashboardStats, error) {
	return s.Repo.DashboardStats(ctx)
}

func (s *AdminService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AdminService) DeleteUser(ctx context.Context, actorID uuid.UUID, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if id == actorID {
		return fmt.Errorf("%w: cannot delete your own account", ErrValidation)
	}
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return notFound(err, "user not found")
	}

	events.Emit(ctx, s.Events, events.TopicUser, id.String(), events.Event{
		Type:   "user_deleted",
		UserID: id.String(),
		Data:   map[string]any{"deletedBy": actorID.String()},
	})
	return nil
}

func (s *AdminService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.Repo.ListAllOrders(ctx)
}

func (s *AdminService) UpdateOrderStatus(ctx context.Context, rawID, status string) (*models.Order, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("%w: order not found", ErrNotFound)
	}
	st := models.OrderStatus(status)
	if !st.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", ErrValidation, status)
	}

	order, err := s.Repo.UpdateOrderStatus(ctx, id, st)
	if err != nil {
		return nil, notFound(err, "order not found")
	}

	events.Emit(ctx, s.Events, events.TopicOrder, order.ID.String(), events.Event{
		Type:    "order_status_changed",
		UserID:  order.UserID.String(),
		OrderID: order.ID.String(),
		Data:    map[string]any{"status": order.Status},
	})
	return order, nil
}

func (s *AdminService) DeleteOrder(ctx context.Context, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: order not found", ErrNotFound)
	}
	if err := s.Repo.DeleteOrder(ctx, id); err != nil {
		return notFound(err, "order not found")
	}

	events.Emit(ctx, s.Events, events.TopicOrder, id.String(), events.Event{
		Type:    "order_deleted",
		OrderID: id.String(),
	})
	return nil
}
