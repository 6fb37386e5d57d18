package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/ispure/ispure-go/internal/metrics"
	"github.com/ispure/ispure-go/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	coll *mongo.Collection

	createIndex func(ctx context.Context) error
	indexMu     sync.Mutex
	indexReady  bool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *mongo.Database) *UserRepository {
	r := &UserRepository{coll: collection(db, UserCollection)}
	r.createIndex = func(ctx context.Context) error {
		_, err := r.coll.Indexes().CreateOne(ctx, emailIndex)
		return err
	}
	return r
}

// ensureEmailIndex creates the unique email index once. A failed attempt is
// retried on the next call; until it succeeds no user can be inserted.
func (r *UserRepository) ensureEmailIndex(ctx context.Context) error {
	r.indexMu.Lock()
	defer r.indexMu.Unlock()

	if r.indexReady {
		return nil
	}
	if err := r.createIndex(ctx); err != nil {
		return fmt.Errorf("ensure email index: %w", err)
	}
	r.indexReady = true
	return nil
}

// Create inserts a new user and sets the generated ID on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) (err error) {
	defer observe(UserCollection, "insert", time.Now(), &err)

	if err := r.ensureEmailIndex(ctx); err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	if id, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = id
	}
	return nil
}

// GetByEmail retrieves a user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (user *model.User, err error) {
	defer observe(UserCollection, "find_one", time.Now(), &err)

	user = &model.User{}
	err = r.coll.FindOne(ctx, bson.D{{Key: "email", Value: email}}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// GetByID retrieves a user by the hex form of their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (user *model.User, err error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}

	defer observe(UserCollection, "find_one", time.Now(), &err)

	user = &model.User{}
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

// observe records a store operation, ignoring the repository's own
// not-found sentinels.
func observe(coll, op string, start time.Time, errp *error) {
	err := *errp
	if isNotFound(err) {
		err = nil
	}
	metrics.ObserveQuery(coll, op, start, err)
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrNoReadings) ||
		errors.Is(err, ErrDuplicateEmail)
}
