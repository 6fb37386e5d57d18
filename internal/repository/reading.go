package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/ispure/ispure-go/internal/model"
)

var ErrNoReadings = errors.New("no readings found")

const timestampField = "payload.dateTime"

// ReadingRepository reads and appends documents of one reading collection.
// Documents without payload.dateTime are invisible to every query.
type ReadingRepository[T any] struct {
	coll *mongo.Collection
	name string
}

// NewSensorRepository returns the repository of the sensors collection.
func NewSensorRepository(db *mongo.Database) *ReadingRepository[model.SensorReading] {
	return &ReadingRepository[model.SensorReading]{coll: collection(db, SensorCollection), name: SensorCollection}
}

// NewIspuRepository returns the repository of the ispus collection.
func NewIspuRepository(db *mongo.Database) *ReadingRepository[model.IspuReading] {
	return &ReadingRepository[model.IspuReading]{coll: collection(db, IspuCollection), name: IspuCollection}
}

func timestamped() bson.D {
	return bson.D{{Key: timestampField, Value: bson.D{{Key: "$exists", Value: true}}}}
}

// windowFilter selects readings with from <= dateTime < to.
func windowFilter(from, to time.Time) bson.D {
	return bson.D{{Key: timestampField, Value: bson.D{
		{Key: "$gte", Value: from},
		{Key: "$lt", Value: to},
	}}}
}

// Latest returns the reading with the greatest timestamp.
func (r *ReadingRepository[T]) Latest(ctx context.Context) (doc *T, err error) {
	defer observe(r.name, "find_latest", time.Now(), &err)

	opts := options.FindOne().SetSort(bson.D{{Key: timestampField, Value: -1}})

	doc = new(T)
	err = r.coll.FindOne(ctx, timestamped(), opts).Decode(doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNoReadings
		}
		return nil, err
	}
	return doc, nil
}

// List returns every reading, newest first.
func (r *ReadingRepository[T]) List(ctx context.Context) (docs []T, err error) {
	defer observe(r.name, "find", time.Now(), &err)

	opts := options.Find().SetSort(bson.D{{Key: timestampField, Value: -1}})
	return r.find(ctx, timestamped(), opts)
}

// ListBetween returns readings with from <= dateTime < to, oldest first.
func (r *ReadingRepository[T]) ListBetween(ctx context.Context, from, to time.Time) (docs []T, err error) {
	defer observe(r.name, "find_window", time.Now(), &err)

	opts := options.Find().SetSort(bson.D{{Key: timestampField, Value: 1}})
	return r.find(ctx, windowFilter(from, to), opts)
}

func (r *ReadingRepository[T]) find(ctx context.Context, filter bson.D, opts *options.FindOptionsBuilder) ([]T, error) {
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []T
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Insert appends a reading and returns its generated ID.
func (r *ReadingRepository[T]) Insert(ctx context.Context, doc *T) (id bson.ObjectID, err error) {
	defer observe(r.name, "insert", time.Now(), &err)

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return bson.NilObjectID, err
	}
	id, _ = res.InsertedID.(bson.ObjectID)
	return id, nil
}
