package jobqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the list holding pending deletion job ids
const DefaultKey = "splitsheet:deletion-jobs"

// RedisQueue is a Queue on a Redis list (LPUSH / BRPOP)
type RedisQueue struct {
	client *redis.Client
	key    string
}

// NewRedisQueue connects to redisURL and checks the connection
func NewRedisQueue(redisURL string) (*RedisQueue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisQueueWithClient(client, DefaultKey), nil
}

// NewRedisQueueWithClient creates a queue from an existing client
func NewRedisQueueWithClient(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultKey
	}
	return &RedisQueue{client: client, key: key}
}

// Enqueue pushes a job id
func (q *RedisQueue) Enqueue(ctx context.Context, jobID string) error {
	if err := q.client.LPush(ctx, q.key, jobID).Err(); err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return ErrClosed
		}
		return fmt.Errorf("enqueue job: %w", err)
	}
	return nil
}

// Dequeue blocks on BRPOP for up to wait
func (q *RedisQueue) Dequeue(ctx context.Context, wait time.Duration) (string, bool, error) {
	res, err := q.client.BRPop(ctx, wait, q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		if errors.Is(err, redis.ErrClosed) {
			return "", false, ErrClosed
		}
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("dequeue job: %w", err)
	}
	// BRPOP returns [key, value]
	if len(res) != 2 {
		return "", false, fmt.Errorf("dequeue job: unexpected reply %v", res)
	}
	return res[1], true, nil
}

// Len reports the number of queued ids
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Ping checks if Redis is reachable
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}
