package memrepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"
)

type commentRepository struct {
	db *db
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	comment.Prepare(r.db.now())
	cp := *comment
	r.db.comments[comment.ID] = &cp
	return nil
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *commentRepository) FindAll(ctx context.Context) ([]models.Comment, error) {
	return r.filter(func(c *models.Comment) bool { return true }), nil
}

func (r *commentRepository) FindByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return r.filter(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (r *commentRepository) filter(keep func(c *models.Comment) bool) []models.Comment {
	r.db.mu.RLock()
	comments := make([]models.Comment, 0)
	for _, c := range r.db.comments {
		if keep(c) {
			comments = append(comments, *c)
		}
	}
	r.db.mu.RUnlock()

	sortNewestFirst(comments,
		func(c models.Comment) time.Time { return c.CreatedAt },
		func(c models.Comment) string { return c.ID },
	)
	return comments
}

func (r *commentRepository) UpdateText(ctx context.Context, id, text string) (*models.Comment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	c, ok := r.db.comments[id]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	c.Text = text
	c.UpdatedAt = r.db.now()
	cp := *c
	return &cp, nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.comments[id]; !ok {
		return repositories.ErrCommentNotFound
	}
	delete(r.db.comments, id)
	return nil
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	return r.deleteWhere(func(c *models.Comment) bool { return c.PostID == postID }), nil
}

func (r *commentRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return r.deleteWhere(func(c *models.Comment) bool { return c.UserID == userID }), nil
}

func (r *commentRepository) deleteWhere(match func(c *models.Comment) bool) int64 {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, c := range r.db.comments {
		if match(c) {
			delete(r.db.comments, id)
			n++
		}
	}
	return n
}
