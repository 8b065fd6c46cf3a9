package httpserver

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/transport"
)

const msgUnavailable = "Service unavailable. Please try again later."

var statusBySentinel = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrUnavailable, http.StatusServiceUnavailable},
}

// fail maps a service error to an HTTP error and logs it the way handlers do.
func fail(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if !errors.Is(err, s.err) {
			continue
		}
		if s.status == http.StatusServiceUnavailable {
			l.Error(event, "status", s.status, "error", err)
			return echo.NewHTTPError(s.status, msgUnavailable)
		}
		reason := strings.TrimPrefix(err.Error(), s.err.Error()+": ")
		l.Warn(event, "status", s.status, "reason", reason, "error", err)
		return echo.NewHTTPError(s.status, reason)
	}

	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error").SetInternal(err)
}

func badBody(l *slog.Logger, event string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", "invalid body", "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
}

// errorHandler renders every error as {"message": ...}. In production 500 messages are hidden.
func errorHandler(production bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := err.Error()
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = m
			case error:
				msg = m.Error()
			default:
				msg = fmt.Sprint(m)
			}
		}
		if production && code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
			msg = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, transport.MessageResponse{Message: msg})
	}
}
