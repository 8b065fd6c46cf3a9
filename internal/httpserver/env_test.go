package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shivgems/internal/db"
	"github.com/Skotchmaster/shivgems/internal/db/dbtest"
	"github.com/Skotchmaster/shivgems/internal/events"
	"github.com/Skotchmaster/shivgems/internal/idempotency"
	"github.com/Skotchmaster/shivgems/internal/metrics"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/tokens"
)

var testSecret = []byte("test-jwt-secret")

type testEnv struct {
	E      *echo.Echo
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Events *events.Recorder
	Issuer tokens.Issuer

	dbDown bool
}

type envOption func(*Deps)

func production() envOption {
	return func(d *Deps) { d.Production = true }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	gdb := dbtest.New(t)
	r := repo.New(gdb)
	rec := &events.Recorder{}
	issuer := tokens.Issuer{Secret: testSecret, TTL: time.Hour}
	m := metrics.New(prometheus.NewRegistry())

	env := &testEnv{DB: gdb, Repo: r, Events: rec, Issuer: issuer}

	authSvc := &service.AuthService{Repo: r, Issuer: issuer, Events: rec}
	d := &Deps{
		AuthHandler:    &AuthHTTP{Svc: authSvc},
		CatalogHandler: &CatalogHTTP{Svc: &service.CatalogService{Repo: r, Events: rec, Metrics: m}},
		CartHandler:    &CartHTTP{Svc: &service.CartService{Repo: r, Events: rec, Pricing: service.DefaultPricing()}},
		OrderHandler:   &OrderHTTP{Svc: &service.OrderService{Repo: r, Events: rec, Idem: idempotency.NewMemoryStore(), Metrics: m}},
		AdminHandler:   &AdminHTTP{Svc: &service.AdminService{Repo: r, Events: rec}},
		JWTSecret:      testSecret,
		Revocations:    authSvc,
		Metrics:        m,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	d.DBPing = func(ctx context.Context) error {
		if env.dbDown {
			return errors.New("connection refused")
		}
		return db.Ping(ctx, gdb)
	}
	for _, o := range opts {
		o(d)
	}

	env.E = NewServer(d)
	return env
}

func (env *testEnv) doJSONRequest(method, path string, body any, token string, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

// login stores a user with the given role and returns a bearer token for it.
func (env *testEnv) login(t *testing.T, role string) (string, uuid.UUID) {
	t.Helper()

	u := &models.User{Name: role, Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, env.Repo.CreateUser(context.Background(), u))

	tok, _, err := env.Issuer.Issue(u.ID, role)
	require.NoError(t, err)
	return tok, u.ID
}

func (env *testEnv) product(t *testing.T, name string, price int64, stock int) models.Product {
	t.Helper()

	p := models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.NewFromInt(price),
		Image:       "/images/" + name + ".jpg",
		Stock:       stock,
	}
	require.NoError(t, env.Repo.CreateProduct(context.Background(), &p))
	return p
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type message struct {
	Message string `json:"message"`
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
}
