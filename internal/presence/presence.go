package presence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Tracker keeps per-stream viewer counts in Redis so counts stay correct when
// viewers of the same stream land on different nodes.
type Tracker struct {
	client *redis.Client
}

func NewTracker(redisURL string) (*Tracker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &Tracker{client: client}, nil
}

func viewersKey(streamID int64) string {
	return fmt.Sprintf("stream:%d:viewers", streamID)
}

// Join increments the stream's viewer count and returns the new value.
func (t *Tracker) Join(ctx context.Context, streamID int64) (int64, error) {
	count, err := t.client.Incr(ctx, viewersKey(streamID)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr viewers: %w", err)
	}
	return count, nil
}

// Leave decrements the stream's viewer count, flooring at zero. Disconnect
// races can otherwise drive the counter negative.
func (t *Tracker) Leave(ctx context.Context, streamID int64) (int64, error) {
	count, err := t.client.Decr(ctx, viewersKey(streamID)).Result()
	if err != nil {
		return 0, fmt.Errorf("decr viewers: %w", err)
	}
	if count < 0 {
		if err := t.client.Set(ctx, viewersKey(streamID), 0, 0).Err(); err != nil {
			return 0, fmt.Errorf("floor viewers: %w", err)
		}
		count = 0
	}
	return count, nil
}

// Count reads the current viewer count without changing it.
func (t *Tracker) Count(ctx context.Context, streamID int64) (int64, error) {
	count, err := t.client.Get(ctx, viewersKey(streamID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get viewers: %w", err)
	}
	return count, nil
}

func (t *Tracker) Close() error {
	return t.client.Close()
}
