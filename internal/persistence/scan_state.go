package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-sla/internal/sla"
)

const scanStatePrefix = "sla:scan:last:"

// RedisScanState records the last notified SLA status per ticket and
// dimension, used by the notify-once-per-transition scan mode. Keys expire
// after the configured TTL so closed tickets do not accumulate state.
type RedisScanState struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisScanState builds a scan state store on top of the shared client.
func NewRedisScanState(r *Redis, ttl time.Duration) *RedisScanState {
	var client *redis.Client
	if r != nil {
		client = r.Client
	}
	return &RedisScanState{client: client, ttl: ttl}
}

func scanStateKey(ticketID string, dimension sla.Dimension) string {
	return scanStatePrefix + string(dimension) + ":" + ticketID
}

// LastNotifiedStatus returns the status recorded for the ticket dimension, if any.
func (s *RedisScanState) LastNotifiedStatus(ctx context.Context, ticketID string, dimension sla.Dimension) (sla.Status, bool, error) {
	if s.client == nil {
		return "", false, errors.New("redis client not configured")
	}
	val, err := s.client.Get(ctx, scanStateKey(ticketID, dimension)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return sla.Status(val), true, nil
}

// SetNotifiedStatus records the status just notified for the ticket dimension.
func (s *RedisScanState) SetNotifiedStatus(ctx context.Context, ticketID string, dimension sla.Dimension, status sla.Status) error {
	if s.client == nil {
		return errors.New("redis client not configured")
	}
	return s.client.Set(ctx, scanStateKey(ticketID, dimension), string(status), s.ttl).Err()
}
