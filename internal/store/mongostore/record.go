package mongostore

import (
	"context"
	"time"

	"github.com/pomotrack/apiserver/internal/store"
	"github.com/pomotrack/apiserver/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// RecordRepository stores completed-interval records in the records collection.
type RecordRepository struct {
	coll *mongo.Collection
}

func NewRecordRepository(db *mongo.Database) *RecordRepository {
	return &RecordRepository{coll: db.Collection(recordsCollection)}
}

func (r *RecordRepository) Create(ctx context.Context, record types.Record) (types.Record, error) {
	if record.ID == "" {
		record.ID = store.NewID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now()
	}

	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return types.Record{}, err
	}
	return record, nil
}

func (r *RecordRepository) CreatedSince(ctx context.Context, userID string, since time.Time) ([]time.Time, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetProjection(bson.M{"createdAt": 1})
	cursor, err := r.coll.Find(ctx, bson.M{
		"userId":    userID,
		"createdAt": bson.M{"$gte": since},
	}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stamps []time.Time
	for cursor.Next(ctx) {
		var doc struct {
			CreatedAt time.Time `bson:"createdAt"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		stamps = append(stamps, doc.CreatedAt)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return stamps, nil
}
