package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ispure/ispure-go/internal/model"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository handles session persistence operations.
type SessionRepository struct {
	coll *mongo.Collection
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db *mongo.Database) *SessionRepository {
	return &SessionRepository{coll: collection(db, SessionCollection)}
}

// Create inserts a new session and sets its generated ID.
func (r *SessionRepository) Create(ctx context.Context, session *model.Session) (err error) {
	defer observe(SessionCollection, "insert", time.Now(), &err)

	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, session)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		session.ID = id
	}
	return nil
}

// GetByID retrieves a session by the hex form of its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (session *model.Session, err error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrSessionNotFound
	}

	defer observe(SessionCollection, "find_one", time.Now(), &err)

	session = &model.Session{}
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// Delete removes exactly one session.
func (r *SessionRepository) Delete(ctx context.Context, id string) (err error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrSessionNotFound
	}

	defer observe(SessionCollection, "delete", time.Now(), &err)

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}
