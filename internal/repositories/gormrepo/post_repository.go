package gormrepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"gorm.io/gorm"
)

type postRepository struct {
	db *gorm.DB
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Prepare(time.Now().UTC())
	if post.Likes == nil {
		post.Likes = []string{}
	}
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error; err != nil {
		return nil, notFound(err, repositories.ErrPostNotFound)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	q := r.db.WithContext(ctx).Model(&models.Post{}).Order("created_at DESC").Order("id DESC")
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Page > 0 && filter.PerPage > 0 {
		q = q.Offset((filter.Page - 1) * filter.PerPage).Limit(filter.PerPage)
	}

	var posts []models.Post
	err := q.Find(&posts).Error
	return posts, err
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *postRepository) Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	fields := map[string]interface{}{}
	if upd.Title != nil {
		fields["title"] = *upd.Title
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Category != nil {
		fields["category"] = *upd.Category
	}
	if err := r.update(ctx, id, fields); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) UpdateImage(ctx context.Context, id string, image models.Image) (*models.Post, error) {
	err := r.update(ctx, id, map[string]interface{}{
		"image_url":       image.URL,
		"image_public_id": image.PublicID,
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Post, error) {
	var post models.Post

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", id).Error; err != nil {
			return notFound(err, repositories.ErrPostNotFound)
		}

		if post.LikedBy(userID) {
			likes := make([]string, 0, len(post.Likes))
			for _, l := range post.Likes {
				if l != userID {
					likes = append(likes, l)
				}
			}
			post.Likes = likes
		} else {
			post.Likes = append(post.Likes, userID)
		}

		// Save пишет likes через json-сериализатор поля
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Post{})
	return res.RowsAffected, res.Error
}

func (r *postRepository) update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repositories.ErrPostNotFound
	}
	return nil
}
