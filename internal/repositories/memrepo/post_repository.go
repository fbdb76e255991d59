package memrepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
)

type postRepository struct {
	db *db
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	post.Prepare(r.db.now())
	if post.Likes == nil {
		post.Likes = []string{}
	}
	r.db.posts[post.ID] = copyPost(post)
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	return copyPost(p), nil
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	r.db.mu.RLock()
	posts := make([]models.Post, 0, len(r.db.posts))
	for _, p := range r.db.posts {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		posts = append(posts, *copyPost(p))
	}
	r.db.mu.RUnlock()

	sortNewestFirst(posts,
		func(p models.Post) time.Time { return p.CreatedAt },
		func(p models.Post) string { return p.ID },
	)

	if filter.Page > 0 && filter.PerPage > 0 {
		start := (filter.Page - 1) * filter.PerPage
		if start >= len(posts) {
			return []models.Post{}, nil
		}
		end := start + filter.PerPage
		if end > len(posts) {
			end = len(posts)
		}
		posts = posts[start:end]
	}
	return posts, nil
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return int64(len(r.db.posts)), nil
}

func (r *postRepository) Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	if upd.Title != nil {
		p.Title = *upd.Title
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	if upd.Category != nil {
		p.Category = *upd.Category
	}
	p.UpdatedAt = r.db.now()
	return copyPost(p), nil
}

func (r *postRepository) UpdateImage(ctx context.Context, id string, image models.Image) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}
	p.Image = image
	p.UpdatedAt = r.db.now()
	return copyPost(p), nil
}

func (r *postRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Post, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	p, ok := r.db.posts[id]
	if !ok {
		return nil, repositories.ErrPostNotFound
	}

	if p.LikedBy(userID) {
		likes := make([]string, 0, len(p.Likes))
		for _, l := range p.Likes {
			if l != userID {
				likes = append(likes, l)
			}
		}
		p.Likes = likes
	} else {
		p.Likes = append(p.Likes, userID)
	}
	p.UpdatedAt = r.db.now()
	return copyPost(p), nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.posts[id]; !ok {
		return repositories.ErrPostNotFound
	}
	delete(r.db.posts, id)
	return nil
}

func (r *postRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, p := range r.db.posts {
		if p.UserID == userID {
			delete(r.db.posts, id)
			n++
		}
	}
	return n, nil
}
