// Package memrepo - хранилище в памяти процесса (драйвер "memory", тесты)
package memrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
)

type db struct {
	mu         sync.RWMutex
	users      map[string]*models.User
	posts      map[string]*models.Post
	comments   map[string]*models.Comment
	categories map[string]*models.Category
	now        func() time.Time
}

// NewStore создает пустое хранилище в памяти
func NewStore() *repositories.Store {
	d := &db{
		users:      make(map[string]*models.User),
		posts:      make(map[string]*models.Post),
		comments:   make(map[string]*models.Comment),
		categories: make(map[string]*models.Category),
		now:        time.Now,
	}
	return &repositories.Store{
		Users:      &userRepository{db: d},
		Posts:      &postRepository{db: d},
		Comments:   &commentRepository{db: d},
		Categories: &categoryRepository{db: d},
		Ping:       func(ctx context.Context) error { return nil },
		Close:      func(ctx context.Context) error { return nil },
	}
}

func copyUser(u *models.User) *models.User {
	cp := *u
	if u.PasswordResetTokenHash != nil {
		h := *u.PasswordResetTokenHash
		cp.PasswordResetTokenHash = &h
	}
	if u.PasswordResetTokenExpiresAt != nil {
		e := *u.PasswordResetTokenExpiresAt
		cp.PasswordResetTokenExpiresAt = &e
	}
	return &cp
}

func copyPost(p *models.Post) *models.Post {
	cp := *p
	cp.Likes = append([]string{}, p.Likes...)
	return &cp
}

// sortNewestFirst сортирует по createdAt убыванию, при равенстве по ID
func sortNewestFirst[T any](items []T, created func(T) time.Time, id func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci.Equal(cj) {
			return id(items[i]) > id(items[j])
		}
		return ci.After(cj)
	})
}
