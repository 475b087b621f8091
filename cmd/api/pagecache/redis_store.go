package pagecache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "spacetravelling:page:"

// RedisStore keeps zstd-compressed snapshots in Redis hashes
// (fields "body" and "generated_at"). Keys never expire; staleness is decided
// by the Cache from generated_at.
type RedisStore struct {
	client     *redis.Client
	compressor Compressor
}

// NewRedisClient connects and pings addr.
func NewRedisClient(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect redis %s (db %d): %w", addr, db, err)
	}
	return rdb, nil
}

func NewRedisStore(client *redis.Client, compressor Compressor) *RedisStore {
	if compressor == nil {
		compressor = &ZstdCompressor{}
	}
	return &RedisStore{client: client, compressor: compressor}
}

func (s *RedisStore) Get(ctx context.Context, key string) (Snapshot, bool, error) {
	fields, err := s.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("hgetall snapshot %s: %w", key, err)
	}
	raw, ok := fields["body"]
	if !ok {
		return Snapshot{}, false, nil
	}
	nanos, err := strconv.ParseInt(fields["generated_at"], 10, 64)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("snapshot %s: bad generated_at: %w", key, err)
	}
	body, err := s.compressor.Decompress([]byte(raw))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("decompress snapshot %s: %w", key, err)
	}
	return Snapshot{Key: key, Body: body, GeneratedAt: time.Unix(0, nanos)}, true, nil
}

func (s *RedisStore) Put(ctx context.Context, snap Snapshot) error {
	body, err := s.compressor.Compress(snap.Body)
	if err != nil {
		return fmt.Errorf("compress snapshot %s: %w", snap.Key, err)
	}
	err = s.client.HSet(ctx, redisKeyPrefix+snap.Key,
		"body", body,
		"generated_at", strconv.FormatInt(snap.GeneratedAt.UnixNano(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("hset snapshot %s: %w", snap.Key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, redisKeyPrefix+k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("del snapshots: %w", err)
	}
	return nil
}

// Clear deletes every snapshot key, using SCAN rather than KEYS.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("clear snapshots: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan snapshots: %w", err)
	}
	if len(batch) > 0 {
		if err := s.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("clear snapshots: %w", err)
		}
	}
	return nil
}

func (s *RedisStore) Close(context.Context) error {
	return s.client.Close()
}
