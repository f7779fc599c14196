package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vishwajeetsingh04/interview-engine/internal/models"
)

const publishTimeout = 2 * time.Second

// RedisPublisher mirrors every snapshot to a per-session Redis channel so
// out-of-process observers (recruiter dashboards, recorders) can follow a
// session without touching the engine.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher connects to Redis and verifies connectivity
func NewRedisPublisher(address, password string, db int) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPublisher{client: client}, nil
}

// Channel returns the pub/sub channel name for a session
func Channel(sessionID string) string {
	return "interview:session:" + sessionID
}

// Publish sends the snapshot as JSON, fire-and-forget. Errors are logged
// and never reach the ingest path.
func (p *RedisPublisher) Publish(ctx context.Context, snap *models.Snapshot) {
	payload, err := json.Marshal(snap)
	if err != nil {
		slog.Error("failed to marshal snapshot", "error", err, "session_id", snap.SessionID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.client.Publish(ctx, Channel(snap.SessionID), payload).Err(); err != nil {
			slog.Warn("failed to publish snapshot to redis", "error", err, "session_id", snap.SessionID)
		}
	}()
}

// HealthCheck verifies Redis connectivity
func (p *RedisPublisher) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
