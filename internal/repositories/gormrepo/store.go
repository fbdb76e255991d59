// Package gormrepo - SQL хранилище на GORM (PostgreSQL в проде, SQLite в тестах)
package gormrepo

import (
	"context"
	"errors"
	"fmt"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenPostgres подключается к PostgreSQL по DSN
func OpenPostgres(ctx context.Context, dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), Config())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get *sql.DB from GORM: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database unavailable: %w", err)
	}
	return db, nil
}

// Config - общие настройки GORM: перевод ошибок драйвера в gorm.ErrDuplicatedKey
func Config() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

// NewStore мигрирует схему и собирает репозитории поверх db
func NewStore(ctx context.Context, db *gorm.DB) (*repositories.Store, error) {
	if err := db.WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Comment{},
		&models.Category{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &repositories.Store{
		Users:      &userRepository{db: db},
		Posts:      &postRepository{db: db},
		Comments:   &commentRepository{db: db},
		Categories: &categoryRepository{db: db},
		Ping: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		Close: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	}, nil
}

// notFound переводит gorm.ErrRecordNotFound в доменную ошибку репозитория
func notFound(err, target error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return target
	}
	return err
}
