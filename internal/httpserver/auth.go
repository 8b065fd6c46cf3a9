package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	authmw "github.com/Skotchmaster/shivgems/internal/middleware/auth"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func authResponse(res *service.AuthResult) transport.AuthResponse {
	return transport.AuthResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.register")

	var req transport.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "register_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_success", "user_id", res.User.ID)
	return c.JSON(http.StatusCreated, authResponse(res))
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badBody(l, "login_error", err)
	}
	if err := c.Validate(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return err
	}

	res, err := h.Svc.Login(ctx, req)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, authResponse(res))
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.profile")

	userID, err := authmw.UserID(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.Svc.Profile(ctx, userID)
	if err != nil {
		return fail(l, "profile_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.logout")

	if err := h.Svc.Logout(ctx, authmw.Claims(c)); err != nil {
		return fail(l, "logout_error", err)
	}

	l.Info("logout_success")
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "logged out"})
}
