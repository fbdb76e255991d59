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

type userRepository struct {
	coll *mongo.Collection
}

var clearReset = bson.M{"passwordResetToken": "", "passwordResetTokenExpires": ""}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	user.Prepare(time.Now().UTC())
	_, err := r.coll.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrUserAlreadyExists
	}
	return err
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"_id": id}, repositories.ErrUserNotFound)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"email": email}, repositories.ErrUserNotFound)
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, hash string) (*models.User, error) {
	return findOne[models.User](ctx, r.coll, bson.M{"passwordResetToken": hash}, repositories.ErrUserNotFound)
}

func (r *userRepository) FindAll(ctx context.Context) ([]models.User, error) {
	return findMany[models.User](ctx, r.coll, bson.M{}, options.Find().SetSort(newestFirst))
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{})
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	set := bson.M{}
	update := bson.M{"$set": set}
	if upd.Username != nil {
		set["username"] = *upd.Username
	}
	if upd.Bio != nil {
		set["bio"] = *upd.Bio
	}
	if upd.PasswordHash != nil {
		set["password"] = *upd.PasswordHash
		update["$unset"] = clearReset
	}
	if err := setFields(ctx, r.coll, id, update, repositories.ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) UpdatePhoto(ctx context.Context, id string, photo models.Image) (*models.User, error) {
	update := bson.M{"$set": bson.M{"profilePhoto": photo}}
	if err := setFields(ctx, r.coll, id, update, repositories.ErrUserNotFound); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.coll, id, repositories.ErrUserNotFound)
}

func (r *userRepository) SetPasswordResetToken(ctx context.Context, id, hash string, expiresAt time.Time) error {
	update := bson.M{"$set": bson.M{
		"passwordResetToken":        hash,
		"passwordResetTokenExpires": expiresAt,
	}}
	err := setFields(ctx, r.coll, id, update, repositories.ErrUserNotFound)
	if mongo.IsDuplicateKeyError(err) {
		return repositories.ErrResetTokenTaken
	}
	return err
}

func (r *userRepository) ClearPasswordResetToken(ctx context.Context, id string) error {
	return setFields(ctx, r.coll, id, bson.M{"$unset": clearReset}, repositories.ErrUserNotFound)
}

func (r *userRepository) ConsumePasswordResetToken(ctx context.Context, hash string, now time.Time, passwordHash string) (*models.User, error) {
	filter := bson.M{
		"passwordResetToken":        hash,
		"passwordResetTokenExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": time.Now().UTC()},
		"$unset": clearReset,
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var user models.User
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	update := bson.M{
		"$set":   bson.M{"password": passwordHash},
		"$unset": clearReset,
	}
	return setFields(ctx, r.coll, id, update, repositories.ErrUserNotFound)
}
