package database

import (
	"context"
	"errors"

	"socialhub/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrNotFound     = errors.New("database: document not found")
	ErrDuplicateKey = errors.New("database: duplicate key")
)

// UserStore is the subset of user persistence the services rely on.
// SaveUser inserts when u.ID is zero (assigning a new id) and replaces otherwise.
type UserStore interface {
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, u *models.User) error
}

// PostStore mirrors UserStore for posts. FindPostsByOwner returns newest first.
type PostStore interface {
	FindPostByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error)
	FindPostsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Post, error)
	SavePost(ctx context.Context, p *models.Post) error
	DeletePost(ctx context.Context, id primitive.ObjectID) error
}

type Store interface {
	UserStore
	PostStore
}
