package main

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/shivgems/internal/config"
	"github.com/Skotchmaster/shivgems/internal/db"
	"github.com/Skotchmaster/shivgems/internal/logging"
	"github.com/Skotchmaster/shivgems/internal/repo"
	"github.com/Skotchmaster/shivgems/internal/search"
	"github.com/Skotchmaster/shivgems/internal/service"
	"github.com/Skotchmaster/shivgems/internal/tokens"
)

// seed loads the sample catalog into the store and, when configured,
// the admin account and the search index.
func main() {
	cfg := config.Load()
	config.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	defer func() { _ = db.Close(gdb) }()
	if err := db.Migrate(ctx, gdb); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	r := repo.New(gdb)
	added := 0
	for _, p := range service.SampleProducts() {
		_, err := r.GetProduct(ctx, p.ID)
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Fatalf("lookup %s: %v", p.Name, err)
		}
		if err := r.CreateProduct(ctx, &p); err != nil {
			log.Fatalf("create %s: %v", p.Name, err)
		}
		added++
	}
	logger.Info("sample products seeded", "added", added)

	if cfg.AdminEmail != "" {
		auth := &service.AuthService{Repo: r, Issuer: tokens.Issuer{Secret: cfg.JWTSecret, TTL: cfg.JWTTTL}}
		if _, err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.Fatalf("admin: %v", err)
		}
		logger.Info("admin account ensured", "email", cfg.AdminEmail)
	}

	if cfg.ESURL == "" {
		return
	}
	es, err := search.NewClient(search.Config{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword, Index: cfg.ESIndex})
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	idx := &search.ProductIndex{ES: es, Index: cfg.ESIndex}

	total, err := r.CountProducts(ctx)
	if err != nil {
		log.Fatalf("count products: %v", err)
	}
	const batch = 100
	for offset := 0; offset < int(total); offset += batch {
		_, items, err := r.ListProducts(ctx, offset, batch)
		if err != nil {
			log.Fatalf("list products: %v", err)
		}
		for _, p := range items {
			if err := idx.Put(ctx, p); err != nil {
				log.Fatalf("index %s: %v", p.ID, err)
			}
		}
	}
	logger.Info("search index rebuilt", "index", cfg.ESIndex, "products", total)
}
