package blocklist

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const DefaultRedisKey = "moderation:blocklist"

const redisLoadTimeout = 2 * time.Second

// RedisStore reads the managed blocklist from a single redis key holding a
// JSON-encoded entry list. Operators update the key out of band; a reload
// picks the change up without a deploy.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: client, key: key}
}

func (s *RedisStore) Load(ctx context.Context) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, redisLoadTimeout)
	defer cancel()

	raw, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read blocklist key %s: %w", s.key, err)
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("malformed blocklist at key %s: %w", s.key, err)
	}
	return entries, nil
}
