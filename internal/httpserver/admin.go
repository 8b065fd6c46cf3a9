package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	authmw "github.com/Skotchmaster/shivgems/internal/middleware/auth"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type AdminHTTP struct {
	Svc *service.AdminService
}

func (h *AdminHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	stats, err := h.Svc.Dashboard(ctx)
	if err != nil {
		return fail(l, "dashboard_error", err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_users")

	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, users)
}

func (h *AdminHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_user")

	actorID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.DeleteUser(ctx, actorID, c.Param("id")); err != nil {
		return fail(l, "delete_user_error", err)
	}

	l.Info("delete_user_success", "deleted_user_id", c.Param("id"))
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "user deleted"})
}

func (h *AdminHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.list_orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *AdminHTTP) UpdateOrderStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_order_status")

	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_order_status_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("update_order_status_error", "status", 400, "error", err)
		return err
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, c.Param("id"), req.Status)
	if err != nil {
		return fail(l, "update_order_status_error", err)
	}

	l.Info("update_order_status_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *AdminHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_order")

	if err := h.Svc.DeleteOrder(ctx, c.Param("id")); err != nil {
		return fail(l, "delete_order_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "order deleted"})
}
