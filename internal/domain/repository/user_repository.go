package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/linkbio/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when a write would duplicate an email.
	ErrEmailTaken = errors.New("email already exists")
	// ErrSlugTaken is returned when a write would duplicate a profile slug
	// owned by another user. Callers re-allocate and retry.
	ErrSlugTaken = errors.New("url slug already exists")
)

// PublicQuery selects a page of the public profile directory.
// Offset and Limit count profiles, not users.
type PublicQuery struct {
	Search string
	Offset int
	Limit  int
}

// PublicProfileRow is one flattened directory entry.
type PublicProfileRow struct {
	UserID  string
	Profile entity.Profile
}

// UserRepository is the document store holding User aggregates.
// Every write replaces the whole aggregate atomically, and the store enforces
// uniqueness of emails and of every embedded profile slug.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetBySlug(ctx context.Context, slug string) (*entity.User, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Replace(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	ListPublic(ctx context.Context, q PublicQuery) ([]PublicProfileRow, int, error)
	Ping(ctx context.Context) error
}
