package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/tokens"
)

var secret = []byte("test-jwt-secret")

type revoked map[string]bool

func (r revoked) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "boom" {
		return false, errors.New("db down")
	}
	return r[jti], nil
}

func newEcho(rev Revocations) *echo.Echo {
	e := echo.New()
	authMW := RequireAuth(secret, rev)
	e.GET("/me", func(c echo.Context) error {
		id, err := UserID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, id.String()+" "+Claims(c).Role)
	}, authMW)
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, authMW, RequireAdmin)
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func issue(t *testing.T, role string) (string, *tokens.AccessClaims, uuid.UUID) {
	t.Helper()
	id := uuid.New()
	tok, claims, err := tokens.Issuer{Secret: secret, TTL: time.Hour}.Issue(id, role)
	require.NoError(t, err)
	return tok, claims, id
}

func TestRequireAuth_AttachesIdentity(t *testing.T) {
	e := newEcho(revoked{})
	tok, _, id := issue(t, models.RoleCustomer)

	rec := do(e, "/me", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String()+" customer", rec.Body.String())
}

func TestRequireAuth_Rejects(t *testing.T) {
	expired, _, err := tokens.Issuer{Secret: secret, TTL: time.Minute, Now: func() time.Time {
		return time.Now().Add(-time.Hour)
	}}.Issue(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)
	foreign, _, err := tokens.Issuer{Secret: []byte("other"), TTL: time.Hour}.Issue(uuid.New(), models.RoleAdmin)
	require.NoError(t, err)

	tok, claims, _ := issue(t, models.RoleCustomer)
	e := newEcho(revoked{claims.ID: true})

	_, other, _ := issue(t, models.RoleAdmin)
	wrongAlg, err := jwt.NewWithClaims(jwt.SigningMethodHS512, other).SignedString(secret)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "missing", token: ""},
		{name: "garbage", token: "abc.def.ghi"},
		{name: "expired", token: expired},
		{name: "wrong secret", token: foreign},
		{name: "wrong algorithm", token: wrongAlg},
		{name: "revoked", token: tok},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, "/me", tt.token)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAuth_RevocationStoreDown(t *testing.T) {
	tok, _, err := tokens.Issuer{Secret: secret, TTL: time.Hour}.Issue(uuid.New(), models.RoleCustomer)
	require.NoError(t, err)
	claims, err := tokens.AccessClaimsFromToken(tok, secret)
	require.NoError(t, err)

	e := newEcho(revoked{})
	assert.Equal(t, http.StatusOK, do(e, "/me", tok).Code)

	// a jti the fake store fails on
	claims.ID = "boom"
	bad, err := signClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, do(e, "/me", bad).Code)
}

func signClaims(c *tokens.AccessClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(secret)
}

func TestRequireAdmin(t *testing.T) {
	e := newEcho(nil)

	customer, _, _ := issue(t, models.RoleCustomer)
	admin, _, _ := issue(t, models.RoleAdmin)

	assert.Equal(t, http.StatusUnauthorized, do(e, "/admin", "").Code)
	assert.Equal(t, http.StatusForbidden, do(e, "/admin", customer).Code)
	assert.Equal(t, http.StatusNoContent, do(e, "/admin", admin).Code)
}
