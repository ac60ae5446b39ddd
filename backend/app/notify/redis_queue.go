package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const DefaultRedisKey = "bugtracker:notifications"

// RedisQueue is a list-backed queue shared by every server instance. Messages
// are pushed on the left and popped from the right.
type RedisQueue struct {
	client      *redis.Client
	key         string
	pollTimeout time.Duration
}

func NewRedisQueue(client *redis.Client, key string) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisQueue{client: client, key: key, pollTimeout: 5 * time.Second}
}

func (q *RedisQueue) Push(ctx context.Context, m Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}
	return q.client.LPush(ctx, q.key, data).Err()
}

func (q *RedisQueue) Pop(ctx context.Context) (Message, error) {
	for {
		res, err := q.client.BRPop(ctx, q.pollTimeout, q.key).Result()
		if errors.Is(err, redis.Nil) {
			if ctx.Err() != nil {
				return Message{}, ctx.Err()
			}
			continue
		}
		if err != nil {
			return Message{}, err
		}
		var m Message
		if err := json.Unmarshal([]byte(res[1]), &m); err != nil {
			return Message{}, fmt.Errorf("decode notification: %w", err)
		}
		return m, nil
	}
}

// Close leaves the client open; it is owned by the caller.
func (q *RedisQueue) Close() error { return nil }
