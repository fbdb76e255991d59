// Package database выбирает драйвер хранилища по конфигурации
package database

import (
	"context"
	"fmt"

	"blog_backend/internal/config"
	"blog_backend/internal/logger"
	"blog_backend/internal/repositories"
	"blog_backend/internal/repositories/gormrepo"
	"blog_backend/internal/repositories/memrepo"
	"blog_backend/internal/repositories/mongorepo"
)

// Open подключается к хранилищу, мигрирует схему/индексы и возвращает репозитории
func Open(ctx context.Context, cfg config.DatabaseConfig) (*repositories.Store, error) {
	switch cfg.Driver {
	case "mongo":
		client, err := mongorepo.Connect(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		store, err := mongorepo.NewStore(ctx, client, cfg.Name)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		logger.Info("MongoDB connected", "database", cfg.Name)
		return store, nil

	case "postgres":
		db, err := gormrepo.OpenPostgres(ctx, cfg.URL)
		if err != nil {
			return nil, err
		}
		store, err := gormrepo.NewStore(ctx, db)
		if err != nil {
			return nil, err
		}
		logger.Info("PostgreSQL connected, AutoMigrate done")
		return store, nil

	case "memory":
		logger.Warn("Using in-memory storage, data is lost on restart")
		return memrepo.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %q", cfg.Driver)
	}
}
