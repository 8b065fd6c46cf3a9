package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	authmw "github.com/Skotchmaster/shivgems/internal/middleware/auth"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	items, err := h.Svc.GetCart(ctx, userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CartHTTP) Summary(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.summary")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	sum, err := h.Svc.Summary(ctx, userID)
	if err != nil {
		return fail(l, "cart_summary_error", err)
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "add_to_cart_error", err)
	}

	item, created, err := h.Svc.AddToCart(ctx, userID, req)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "product_id", item.ProductID, "quantity", item.Quantity)
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, item)
}

func (h *CartHTTP) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "update_cart_error", err)
	}

	item, err := h.Svc.UpdateQuantity(ctx, userID, c.Param("id"), req.Quantity)
	if err != nil {
		return fail(l, "update_cart_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.RemoveItem(ctx, userID, c.Param("id")); err != nil {
		return fail(l, "remove_from_cart_error", err)
	}
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "item removed from cart"})
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	if err := h.Svc.Clear(ctx, userID); err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("cart successfully cleared")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "cart cleared"})
}
