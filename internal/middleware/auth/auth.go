package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/tokens"
)

const (
	tokenKey  = "user"
	claimsKey = "claims"
	userIDKey = "user_id"
	roleKey   = "role"
)

var errUnauthorized = echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")

type Revocations interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// RequireAuth verifies the bearer token and attaches the caller's identity to the context.
func RequireAuth(secret []byte, rev Revocations) echo.MiddlewareFunc {
	verify := echojwt.WithConfig(echojwt.Config{
		ContextKey:  tokenKey,
		TokenLookup: "header:Authorization:Bearer ",
		ParseTokenFunc: func(_ echo.Context, raw string) (any, error) {
			return tokens.AccessClaimsFromToken(raw, secret)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logging.FromContext(c.Request().Context()).Warn("auth_failed", "status", 401, "error", err)
			return errUnauthorized
		},
	})

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(identify(rev, next))
	}
}

func identify(rev Revocations, next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx)

		claims, ok := c.Get(tokenKey).(*tokens.AccessClaims)
		if !ok {
			return errUnauthorized
		}
		userID, err := claims.UserID()
		if err != nil {
			l.Warn("auth_failed", "status", 401, "error", err)
			return errUnauthorized
		}

		if rev != nil && claims.ID != "" {
			revoked, err := rev.IsRevoked(ctx, claims.ID)
			if err != nil {
				l.Error("auth_revocation_check_failed", "status", 503, "error", err)
				return echo.NewHTTPError(http.StatusServiceUnavailable, "Service unavailable. Please try again later.")
			}
			if revoked {
				l.Warn("auth_failed", "status", 401, "reason", "token revoked")
				return errUnauthorized
			}
		}

		c.Set(claimsKey, claims)
		c.Set(userIDKey, userID.String())
		c.Set(roleKey, claims.Role)

		l = l.With("user_id", userID.String())
		c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))
		return next(c)
	}
}

func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, _ := c.Get(roleKey).(string)
		if role != models.RoleAdmin {
			logging.FromContext(c.Request().Context()).Warn("admin_required", "status", 403, "role", role)
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}

func UserID(c echo.Context) (uuid.UUID, error) {
	s, ok := c.Get(userIDKey).(string)
	if !ok || s == "" {
		return uuid.Nil, errors.New("unauthorized")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, errors.New("unauthorized")
	}
	return id, nil
}

func Claims(c echo.Context) *tokens.AccessClaims {
	claims, _ := c.Get(claimsKey).(*tokens.AccessClaims)
	return claims
}
