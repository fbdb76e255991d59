package mongorepo

import (
	"context"
	"time"

	"blog_backend/internal/models"
	"blog_backend/internal/repositories"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type commentRepository struct {
	coll *mongo.Collection
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	comment.Prepare(time.Now().UTC())
	_, err := r.coll.InsertOne(ctx, comment)
	return err
}

func (r *commentRepository) FindByID(ctx context.Context, id string) (*models.Comment, error) {
	return findOne[models.Comment](ctx, r.coll, bson.M{"_id": id}, repositories.ErrCommentNotFound)
}

func (r *commentRepository) FindAll(ctx context.Context) ([]models.Comment, error) {
	return findMany[models.Comment](ctx, r.coll, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *commentRepository) FindByPost(ctx context.Context, postID string) ([]models.Comment, error) {
	return findMany[models.Comment](ctx, r.coll, bson.M{"postId": postID}, options.Find().SetSort(newestFirst))
}

func (r *commentRepository) UpdateText(ctx context.Context, id, text string) (*models.Comment, error) {
	if err := setFields(ctx, r.coll, id, bson.M{"$set": bson.M{"text": text}}, repositories.ErrCommentNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id, repositories.ErrCommentNotFound)
}

func (r *commentRepository) DeleteByPost(ctx context.Context, postID string) (int64, error) {
	return deleteMany(ctx, r.coll, bson.M{"postId": postID})
}

func (r *commentRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	return deleteMany(ctx, r.coll, bson.M{"user": userID})
}
