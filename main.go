package main

import (
	"context"
	"fmt"
	"time"

	"api_dealership/api"
	"api_dealership/internal/access"
	"api_dealership/internal/catalog"
	"api_dealership/internal/config"
	"api_dealership/internal/sales"
	"api_dealership/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Errorf("error creating logger: %v", err))
	}
	defer logger.Sync()

	store, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}

	users, err := loadUsers(cfg)
	if err != nil {
		logger.Fatal("failed to load users", zap.Error(err))
	}
	if len(users) == 0 {
		logger.Warn("no users configured; set AUTH_USERS to allow sign-in")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	r.Use(gin.Recovery())
	api.InitRoutes(r, api.Dependencies{
		Sales:       sales.NewService(store, logger),
		Tokens:      access.NewTokens(cfg.JWTSecret, cfg.TokenTTL),
		Users:       users,
		Allowlist:   access.DefaultAllowlist(),
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	logger.Info("server starting", zap.String("addr", cfg.Addr()), zap.String("store", cfg.StoreDriver))
	if err := r.Run(cfg.Addr()); err != nil {
		panic(fmt.Errorf("error trying to start server: %v", err))
	}
}

// loadUsers reads AUTH_USERS. Demo mode without configured accounts signs
// in one user per role.
func loadUsers(cfg config.Config) (access.Users, error) {
	if cfg.AuthUsers != "" {
		return access.ParseUsers(cfg.AuthUsers)
	}
	if cfg.SeedDemo {
		return access.DemoUsers()
	}
	return access.Users{}, nil
}

// openStore builds the configured store and loads the client and vehicle
// directories into it.
func openStore(cfg config.Config, logger *zap.Logger) (sales.UnitOfWork, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch cfg.StoreDriver {
	case config.DriverMySQL:
		db, err := storage.OpenMySQL(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		gs, err := storage.NewGormStorage(db)
		if err != nil {
			return nil, err
		}
		if cfg.SeedDemo && cfg.CatalogURL == "" {
			if err := gs.Seed(ctx, catalog.DemoClients(), catalog.DemoVehicles()); err != nil {
				return nil, fmt.Errorf("failed to seed demo catalog: %w", err)
			}
		}
		return gs, importCatalog(ctx, cfg, gs, logger)

	case config.DriverMemory:
		ls := storage.NewLocalStorage()
		if cfg.SeedDemo && cfg.CatalogURL == "" {
			ls.Seed(catalog.DemoClients(), catalog.DemoVehicles())
		}
		return ls, importCatalog(ctx, cfg, ls, logger)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func importCatalog(ctx context.Context, cfg config.Config, store sales.UnitOfWork, logger *zap.Logger) error {
	if cfg.CatalogURL == "" {
		return nil
	}
	dir := catalog.NewRemoteDirectory(cfg.CatalogURL, logger)
	defer dir.Close()

	return store.Transact(ctx, func(r sales.Repositories) error {
		_, _, err := dir.Import(ctx, r.Clients, r.Vehicles)
		return err
	})
}
