package httpserver

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	authmw "github.com/Skotchmaster/shivgems/internal/middleware/auth"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

const headerIdempotencyKey = "Idempotency-Key"

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "create_order_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("create_order_error", "status", 400, "error", err)
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(headerIdempotencyKey))
	order, err := h.Svc.CreateOrder(ctx, userID, req, key)
	if err != nil {
		return fail(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.CreateOrderResponse{
		Message: "Order created successfully",
		OrderID: order.ID.String(),
		Order:   order,
	})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := h.Svc.ListMine(ctx, userID)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	order, err := h.Svc.GetMine(ctx, userID, c.Param("id"))
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	orders, err := h.Svc.ListAll(ctx)
	if err != nil {
		return fail(l, "list_all_orders_error", err)
	}
	return c.JSON(http.StatusOK, orders)
}
