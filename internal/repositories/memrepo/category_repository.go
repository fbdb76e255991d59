package memrepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
)

type categoryRepository struct {
	db *db
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	category.Prepare(r.db.now())
	cp := *category
	r.db.categories[category.ID] = &cp
	return nil
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	r.db.mu.RLock()
	categories := make([]models.Category, 0, len(r.db.categories))
	for _, c := range r.db.categories {
		categories = append(categories, *c)
	}
	r.db.mu.RUnlock()

	sortNewestFirst(categories,
		func(c models.Category) time.Time { return c.CreatedAt },
		func(c models.Category) string { return c.ID },
	)
	return categories, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.categories[id]; !ok {
		return repositories.ErrCategoryNotFound
	}
	delete(r.db.categories, id)
	return nil
}
