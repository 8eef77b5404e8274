package repository

import (
	"context"
	"time"

	"taskmanager/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GroupTaskRepository stores the tasks nested under a group. Every lookup is
// scoped by group id so a task id from another group never matches.
type GroupTaskRepository interface {
	Create(ctx context.Context, t *model.GroupTask) error
	FindByID(ctx context.Context, groupID, taskID string) (*model.GroupTask, error)
	ListByGroup(ctx context.Context, groupID string) ([]model.GroupTask, error)
	UpdateStatus(ctx context.Context, groupID, taskID, status, updatedBy string, at time.Time) (*model.GroupTask, error)
	Delete(ctx context.Context, groupID, taskID string) error
	DeleteByGroup(ctx context.Context, groupID string) (int64, error)
}

type groupTaskRepo struct{ coll *mongo.Collection }

func NewGroupTaskRepository(db *mongo.Database) GroupTaskRepository {
	coll := db.Collection(CollectionGroupTasks)
	ensureIndexes(coll, plainIndex("group_id"))
	return &groupTaskRepo{coll: coll}
}

func (r *groupTaskRepo) Create(ctx context.Context, t *model.GroupTask) error {
	_, err := r.coll.InsertOne(ctx, t)
	return translate(err)
}

func (r *groupTaskRepo) FindByID(ctx context.Context, groupID, taskID string) (*model.GroupTask, error) {
	return findOne[model.GroupTask](ctx, r.coll, bson.M{"_id": taskID, "group_id": groupID})
}

func (r *groupTaskRepo) ListByGroup(ctx context.Context, groupID string) ([]model.GroupTask, error) {
	return findMany[model.GroupTask](ctx, r.coll, bson.M{"group_id": groupID}, oldestFirst)
}

func (r *groupTaskRepo) UpdateStatus(ctx context.Context, groupID, taskID, status, updatedBy string, at time.Time) (*model.GroupTask, error) {
	var updated model.GroupTask
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": taskID, "group_id": groupID},
		bson.M{"$set": bson.M{"status": status, "updated_by": updatedBy, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		return nil, translate(err)
	}
	return &updated, nil
}

func (r *groupTaskRepo) Delete(ctx context.Context, groupID, taskID string) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": taskID, "group_id": groupID})
}

func (r *groupTaskRepo) DeleteByGroup(ctx context.Context, groupID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
