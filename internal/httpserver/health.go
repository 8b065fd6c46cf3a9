package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
)

type PingFunc func(ctx context.Context) error

func live(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func ready(ping PingFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if ping == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := ping(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Warn("readiness_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	}
}

// requireDatabase rejects the request with 503 when the store does not answer a ping.
func requireDatabase(ping PingFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ping != nil {
				if err := ping(c.Request().Context()); err != nil {
					logging.FromContext(c.Request().Context()).Error("database_unavailable", "status", 503, "error", err)
					return echo.NewHTTPError(http.StatusServiceUnavailable, msgUnavailable)
				}
			}
			return next(c)
		}
	}
}
