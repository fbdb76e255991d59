package mongorepo

import (
	"context"
	"errors"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type postRepository struct {
	coll *mongo.Collection
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	post.Prepare(time.Now().UTC())
	if post.Likes == nil {
		post.Likes = []string{}
	}
	_, err := r.coll.InsertOne(ctx, post)
	return err
}

func (r *postRepository) FindByID(ctx context.Context, id string) (*models.Post, error) {
	return findOne[models.Post](ctx, r.coll, bson.M{"_id": id}, repositories.ErrPostNotFound)
}

func (r *postRepository) List(ctx context.Context, filter models.PostFilter) ([]models.Post, error) {
	query := bson.M{}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	if filter.UserID != "" {
		query["user"] = filter.UserID
	}

	opts := options.Find().SetSort(newestFirst)
	if filter.Page > 0 && filter.PerPage > 0 {
		opts.SetSkip(int64((filter.Page - 1) * filter.PerPage)).SetLimit(int64(filter.PerPage))
	}
	return findMany[models.Post](ctx, r.coll, query, opts)
}

func (r *postRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *postRepository) Update(ctx context.Context, id string, upd models.PostUpdate) (*models.Post, error) {
	set := bson.M{}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Category != nil {
		set["category"] = *upd.Category
	}
	if err := setFields(ctx, r.coll, id, bson.M{"$set": set}, repositories.ErrPostNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) UpdateImage(ctx context.Context, id string, image models.Image) (*models.Post, error) {
	if err := setFields(ctx, r.coll, id, bson.M{"$set": bson.M{"image": image}}, repositories.ErrPostNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *postRepository) ToggleLike(ctx context.Context, id, userID string) (*models.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	now := time.Now().UTC()

	// сначала пробуем снять лайк, затем поставить
	var post models.Post
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "likes": userID},
		bson.M{"$pull": bson.M{"likes": userID}, "$set": bson.M{"updatedAt": now}},
		opts,
	).Decode(&post)
	if err == nil {
		return &post, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$addToSet": bson.M{"likes": userID}, "$set": bson.M{"updatedAt": now}},
		opts,
	).Decode(&post)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id, repositories.ErrPostNotFound)
}

func (r *postRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteMany(ctx, r.coll, bson.M{"user": userID})
}
