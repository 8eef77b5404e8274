package repository

import (
	"context"
	"time"

	"taskmanager/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type GroupRepository interface {
	Create(ctx context.Context, g *model.Group) error
	FindByID(ctx context.Context, id string) (*model.Group, error)
	FindByName(ctx context.Context, name string) (*model.Group, error)
	ListByCreator(ctx context.Context, userID string) ([]model.Group, error)
	ListByMember(ctx context.Context, userID string) ([]model.Group, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, groupID, userID string) error
	RemoveMember(ctx context.Context, groupID, userID string) error
	RemoveMemberEverywhere(ctx context.Context, userID string) error
}

type groupRepo struct{ coll *mongo.Collection }

func NewGroupRepository(db *mongo.Database) GroupRepository {
	coll := db.Collection(CollectionGroups)
	ensureIndexes(coll, uniqueIndex("name"), plainIndex("created_by"), plainIndex("members"))
	return &groupRepo{coll: coll}
}

func (r *groupRepo) Create(ctx context.Context, g *model.Group) error {
	if g.Members == nil {
		g.Members = []string{}
	}
	_, err := r.coll.InsertOne(ctx, g)
	return translate(err)
}

func (r *groupRepo) FindByID(ctx context.Context, id string) (*model.Group, error) {
	return findOne[model.Group](ctx, r.coll, bson.M{"_id": id})
}

func (r *groupRepo) FindByName(ctx context.Context, name string) (*model.Group, error) {
	return findOne[model.Group](ctx, r.coll, bson.M{"name": name})
}

func (r *groupRepo) ListByCreator(ctx context.Context, userID string) ([]model.Group, error) {
	return findMany[model.Group](ctx, r.coll, bson.M{"created_by": userID}, oldestFirst)
}

func (r *groupRepo) ListByMember(ctx context.Context, userID string) ([]model.Group, error) {
	// equality against an array field matches any element
	return findMany[model.Group](ctx, r.coll, bson.M{"members": userID}, oldestFirst)
}

func (r *groupRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": id})
}

// AddMember is idempotent: $addToSet never stores the same id twice.
func (r *groupRepo) AddMember(ctx context.Context, groupID, userID string) error {
	return r.updateMembers(ctx, groupID, bson.M{"$addToSet": bson.M{"members": userID}})
}

// RemoveMember is a no-op when the user is not a member.
func (r *groupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	return r.updateMembers(ctx, groupID, bson.M{"$pull": bson.M{"members": userID}})
}

func (r *groupRepo) RemoveMemberEverywhere(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateMany(ctx, bson.M{"members": userID}, bson.M{
		"$pull": bson.M{"members": userID},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	return err
}

func (r *groupRepo) updateMembers(ctx context.Context, groupID string, update bson.M) error {
	update["$set"] = bson.M{"updated_at": time.Now().UTC()}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": groupID}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
