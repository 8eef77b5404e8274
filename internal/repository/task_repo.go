package repository

import (
	"context"

	"taskmanager/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository stores personal tasks.
type TaskRepository interface {
	Create(ctx context.Context, t *model.Task) error
	FindByID(ctx context.Context, id string) (*model.Task, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	Update(ctx context.Context, id string, p model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

type taskRepo struct{ coll *mongo.Collection }

func NewTaskRepository(db *mongo.Database) TaskRepository {
	coll := db.Collection(CollectionTasks)
	ensureIndexes(coll, plainIndex("owner_id"))
	return &taskRepo{coll: coll}
}

func (r *taskRepo) Create(ctx context.Context, t *model.Task) error {
	_, err := r.coll.InsertOne(ctx, t)
	return translate(err)
}

func (r *taskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	return findOne[model.Task](ctx, r.coll, bson.M{"_id": id})
}

func (r *taskRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	return findMany[model.Task](ctx, r.coll, bson.M{"owner_id": ownerID}, oldestFirst)
}

// Update sets only the fields present in p and returns the stored document.
// Concurrent patches on different fields both survive.
func (r *taskRepo) Update(ctx context.Context, id string, p model.TaskPatch) (*model.Task, error) {
	set := bson.M{"updated_at": p.UpdatedAt}
	if p.Name != nil {
		set["name"] = *p.Name
	}
	if p.Description != nil {
		set["description"] = *p.Description
	}
	if p.Category != nil {
		set["category"] = *p.Category
	}
	if p.Status != nil {
		set["status"] = *p.Status
	}
	if p.Deadline != nil {
		set["deadline"] = *p.Deadline
	}

	var updated model.Task
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

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, bson.M{"_id": id})
}

func (r *taskRepo) DeleteByOwner(ctx context.Context, ownerID string) error {
	_, err := r.coll.DeleteMany(ctx, bson.M{"owner_id": ownerID})
	return err
}
