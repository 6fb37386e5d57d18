package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session binds one login event to a user. Tokens reference it by ID.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    bson.ObjectID `bson:"userId"`
	UserAgent string        `bson:"userAgent"`
	CreatedAt time.Time     `bson:"createdAt"`
	UpdatedAt time.Time     `bson:"updatedAt"`
}
