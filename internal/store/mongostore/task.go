package mongostore

import (
	"context"

	"github.com/pomotrack/apiserver/internal/store"
	"github.com/pomotrack/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// TaskRepository stores tasks in the tasks collection. Every filter carries userId.
type TaskRepository struct {
	coll *mongo.Collection
}

func NewTaskRepository(db *mongo.Database) *TaskRepository {
	return &TaskRepository{coll: db.Collection(tasksCollection)}
}

func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]types.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, err
	}

	tasks := make([]types.Task, 0)
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	if task.ID == "" {
		task.ID = store.NewID()
	}
	task.CreatedAt = now()

	if _, err := r.coll.InsertOne(ctx, task); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) UpdateCompleted(ctx context.Context, userID, taskID string, completed int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": taskID, "userId": userID},
		bson.M{"$set": bson.M{"finish": completed}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, taskID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": taskID, "userId": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteAllByUser(ctx context.Context, userID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
