package repository

import (
	"context"
	"time"

	"taskmanager/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error)
	SetLastLogin(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
}

type userRepo struct{ coll *mongo.Collection }

func NewUserRepository(db *mongo.Database) UserRepository {
	coll := db.Collection(CollectionUsers)
	ensureIndexes(coll, uniqueIndex("username"), uniqueIndex("email"))
	return &userRepo{coll: coll}
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.coll.InsertOne(ctx, u)
	return translate(err)
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"_id": id})
}

func (r *userRepo) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return findMany[model.User](ctx, r.coll, bson.M{"_id": bson.M{"$in": ids}}, oldestFirst)
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"username": username})
}

func (r *userRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"email": email})
}

func (r *userRepo) List(ctx context.Context) ([]model.User, error) {
	return findMany[model.User](ctx, r.coll, bson.M{}, oldestFirst)
}

// Update sets only the fields present in p and returns the stored document.
func (r *userRepo) Update(ctx context.Context, id string, p model.UserPatch) (*model.User, error) {
	set := bson.M{"updated_at": p.UpdatedAt}
	if p.Username != nil {
		set["username"] = *p.Username
	}
	if p.Email != nil {
		set["email"] = *p.Email
	}
	if p.Role != nil {
		set["role"] = *p.Role
	}

	var updated model.User
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *userRepo) SetLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_login": at}})
	return translate(err)
}

func (r *userRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": id})
}
