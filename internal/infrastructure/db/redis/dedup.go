package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const dedupTTL = time.Hour

// NotificationDedup suppresses repeat notifications for the same subject and
// message within dedupTTL, backed by Redis.
// Key format: notify:<subject>:<message>
type NotificationDedup struct {
	client *redis.Client
}

// NewNotificationDedup creates a NotificationDedup wrapping the given Redis client.
func NewNotificationDedup(client *redis.Client) *NotificationDedup {
	return &NotificationDedup{client: client}
}

// Seen reports whether this exact notification was already sent recently.
func (d *NotificationDedup) Seen(ctx context.Context, subject, message string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(subject, message)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that this notification has been sent (expires after dedupTTL).
func (d *NotificationDedup) Mark(ctx context.Context, subject, message string) error {
	return d.client.Set(ctx, d.key(subject, message), "1", dedupTTL).Err()
}

func (d *NotificationDedup) key(subject, message string) string {
	return fmt.Sprintf("notify:%s:%s", subject, message)
}
