package session

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisListClient cubre los comandos de lista que usa el store.
type redisListClient interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStore struct {
	client redisListClient
	ttl    time.Duration
	prefix string
}

// NewRedisStore crea un store de flashes respaldado por Redis, una lista
// por sesión con expiración.
func NewRedisStore(client *redis.Client, ttl time.Duration) Store {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &redisStore{
		client: client,
		ttl:    ttl,
		prefix: "session:flash:",
	}
}

func (s *redisStore) Push(sessionID string, flash Flash) error {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := s.prefix + sessionID
	if err := s.client.RPush(ctx, key, encodeFlash(flash)).Err(); err != nil {
		return err
	}
	return s.client.Expire(ctx, key, s.ttl).Err()
}

func (s *redisStore) Pop(sessionID string) ([]Flash, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := s.prefix + sessionID
	values, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return nil, err
	}
	flashes := make([]Flash, 0, len(values))
	for _, v := range values {
		flashes = append(flashes, decodeFlash(v))
	}
	return flashes, nil
}

func encodeFlash(flash Flash) string {
	return flash.Kind + "|" + flash.Text
}

func decodeFlash(value string) Flash {
	parts := strings.SplitN(value, "|", 2)
	if len(parts) != 2 {
		return Flash{Kind: KindError, Text: value}
	}
	return Flash{Kind: parts[0], Text: parts[1]}
}
