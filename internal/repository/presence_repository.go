package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceRepository mirrors the hub's online/offline transitions into
// Redis so REST handlers (friends list, admin dashboard) can answer "who is
// online" without touching the hub. The hub registry stays the source of
// truth; this is a best-effort projection with TTLs so a crashed process
// ages out of the mirror on its own.
type PresenceRepository struct {
	client *redis.Client
}

func NewPresenceRepository(client *redis.Client) *PresenceRepository {
	return &PresenceRepository{client: client}
}

// UserOnline - adds to the online set and refreshes the status hash, TTL 5 minutes
func (r *PresenceRepository) UserOnline(ctx context.Context, userID string) error {
	pipe := r.client.Pipeline()

	pipe.SAdd(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", userID), map[string]interface{}{
		"status":     "online",
		"updated_at": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", userID), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	return err
}

// UserOffline - removes from the online set, keeps last_seen for 24h
func (r *PresenceRepository) UserOffline(ctx context.Context, userID string) error {
	pipe := r.client.Pipeline()

	pipe.SRem(ctx, "online_users", userID)
	pipe.HSet(ctx, fmt.Sprintf("user:%s:status", userID), map[string]interface{}{
		"status":    "offline",
		"last_seen": time.Now().Unix(),
	})
	pipe.Expire(ctx, fmt.Sprintf("user:%s:status", userID), 24*time.Hour)

	_, err := pipe.Exec(ctx)
	return err
}

func (r *PresenceRepository) IsUserOnline(ctx context.Context, userID string) (bool, error) {
	return r.client.SIsMember(ctx, "online_users", userID).Result()
}

func (r *PresenceRepository) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return r.client.SMembers(ctx, "online_users").Result()
}

// CheckRateLimit increments a windowed counter and reports whether the
// caller is still under limit. Used by the WebSocket upgrade middleware.
func (r *PresenceRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}
