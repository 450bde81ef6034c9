// Package session keeps a per-user session hash in Redis. A token is only
// honoured while its user's session exists, which lets logout and account
// deletion revoke tokens before they expire.
package session

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

func Key(userID string) string {
	return "user:session:" + userID
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Start creates or refreshes the session of userID.
func (s *RedisStore) Start(ctx context.Context, userID, email string, ttl time.Duration) error {
	key := Key(userID)
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    userID,
		"email":      email,
		"logged_in":  true,
		"updated_at": nowRFC3339(),
	})
	pipe.HSetNX(ctx, key, "created_at", nowRFC3339())
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Revoke(ctx context.Context, userID string) error {
	return s.rdb.Del(ctx, Key(userID)).Err()
}

// Active reports whether userID has a live session.
func (s *RedisStore) Active(ctx context.Context, userID string) (bool, error) {
	n, err := s.rdb.Exists(ctx, Key(userID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
