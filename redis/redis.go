package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to addr and verifies the connection with a PING.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

const sessionPrefix = "session:"

// SessionStore keeps live session ids as expiring keys.
type SessionStore struct {
	client *redis.Client
}

func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

func (s *SessionStore) Register(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Set(ctx, sessionPrefix+id, 1, ttl).Err()
}

func (s *SessionStore) Active(ctx context.Context, id string) (bool, error) {
	n, err := s.client.Exists(ctx, sessionPrefix+id).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *SessionStore) Revoke(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionPrefix+id).Err()
}
