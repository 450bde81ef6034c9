package application

import (
	"context"
	"io"
	"time"

	"github.com/oksasatya/linkbio/internal/domain/entity"
)

// Hasher is the one-way password hash used for credentials.
type Hasher interface {
	Hash(plain string) (string, error)
	Compare(hash, plain string) bool
}

// CredentialIssuer signs bearer tokens bound to a user id.
type CredentialIssuer interface {
	GenerateAccessToken(userID string) (string, time.Time, error)
}

// SessionStore tracks which users currently hold live tokens.
type SessionStore interface {
	Start(ctx context.Context, userID, email string, ttl time.Duration) error
	Revoke(ctx context.Context, userID string) error
}

// ProfileIndexer mirrors public profile data into a search index.
type ProfileIndexer interface {
	IndexProfiles(ctx context.Context, u *entity.User) error
	RemoveProfiles(ctx context.Context, profileIDs []string) error
	Search(ctx context.Context, q string, size int) ([]entity.Profile, error)
}

// EventPublisher enqueues JSON jobs for asynchronous workers.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AvatarStorage persists avatar images and returns their public URL.
type AvatarStorage interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}
