package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shivgems/internal/db/dbtest"
	"github.com/Skotchmaster/shivgems/internal/models"
	"github.com/Skotchmaster/shivgems/internal/repo"
)

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	return repo.New(dbtest.New(t))
}

func seedUser(t *testing.T, r *repo.GormRepo, role string) *models.User {
	t.Helper()
	u := &models.User{Name: role, Email: uuid.NewString() + "@example.com", PasswordHash: "x", Role: role}
	require.NoError(t, r.CreateUser(context.Background(), u))
	return u
}

func seedProduct(t *testing.T, r *repo.GormRepo, name string, price string, stock int) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name,
		Price:       decimal.RequireFromString(price),
		Image:       "/" + name + ".jpg",
		Stock:       stock,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func intPtr(v int) *int { return &v }

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
