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

type categoryRepository struct {
	coll *mongo.Collection
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	category.Prepare(time.Now().UTC())
	_, err := r.coll.InsertOne(ctx, category)
	return err
}

func (r *categoryRepository) FindByID(ctx context.Context, id string) (*models.Category, error) {
	return findOne[models.Category](ctx, r.coll, bson.M{"_id": id}, repositories.ErrCategoryNotFound)
}

func (r *categoryRepository) FindAll(ctx context.Context) ([]models.Category, error) {
	return findMany[models.Category](ctx, r.coll, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id, repositories.ErrCategoryNotFound)
}
