package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/ispure/ispure-go/internal/model"
	"github.com/ispure/ispure-go/internal/repository"
)

var errStoreDown = errors.New("store unavailable")

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User
	err   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = bson.NewObjectID()
	u.CreatedAt = time.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID.Hex()] = &cp
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserStore) delete(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
}

type fakeSessionStore struct {
	mu        sync.Mutex
	sessions  map[string]*model.Session
	err       error
	deleteErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, s *model.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	s.ID = bson.NewObjectID()
	cp := *s
	f.sessions[s.ID.Hex()] = &cp
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s, ok := f.sessions[id]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.sessions[id]; !ok {
		return repository.ErrSessionNotFound
	}
	delete(f.sessions, id)
	return nil
}

func (f *fakeSessionStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}

// fakeReadingStore keeps readings in memory and applies the same ordering
// and window semantics as the Mongo repository.
type fakeReadingStore[T model.Reading] struct {
	mu       sync.Mutex
	docs     []T
	err      error
	queries  int
	inserted []*T
}

func (f *fakeReadingStore[T]) sorted(desc bool) []T {
	out := make([]T, 0, len(f.docs))
	for _, d := range f.docs {
		if !d.Timestamp().IsZero() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if desc {
			return out[i].Timestamp().After(out[j].Timestamp())
		}
		return out[i].Timestamp().Before(out[j].Timestamp())
	})
	return out
}

func (f *fakeReadingStore[T]) Latest(context.Context) (*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	docs := f.sorted(true)
	if len(docs) == 0 {
		return nil, repository.ErrNoReadings
	}
	return &docs[0], nil
}

func (f *fakeReadingStore[T]) List(context.Context) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	return f.sorted(true), nil
}

func (f *fakeReadingStore[T]) ListBetween(_ context.Context, from, to time.Time) ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries++
	if f.err != nil {
		return nil, f.err
	}
	var out []T
	for _, d := range f.sorted(false) {
		ts := d.Timestamp()
		if !ts.Before(from) && ts.Before(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeReadingStore[T]) Insert(_ context.Context, doc *T) (bson.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return bson.NilObjectID, f.err
	}
	f.docs = append(f.docs, *doc)
	f.inserted = append(f.inserted, doc)
	return bson.NewObjectID(), nil
}
