package conversation

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const finalizeKeyPrefix = "venuebooking:finalized:"

// FinalizeGuard ensures a session's booking is persisted at most once.
type FinalizeGuard interface {
	// Acquire claims the session. It reports false when the session was
	// already finalized.
	Acquire(ctx context.Context, session string) (bool, error)
	// Release gives the claim back after a failed persist.
	Release(ctx context.Context, session string) error
}

// RedisFinalizeGuard claims sessions with SET NX and a TTL.
type RedisFinalizeGuard struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFinalizeGuard returns a guard backed by client. A nil client yields
// a guard that always grants the claim.
func NewRedisFinalizeGuard(client *redis.Client, ttl time.Duration) FinalizeGuard {
	if client == nil {
		return noopFinalizeGuard{}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisFinalizeGuard{client: client, ttl: ttl}
}

func (g *RedisFinalizeGuard) Acquire(ctx context.Context, session string) (bool, error) {
	ok, err := g.client.SetNX(ctx, finalizeKeyPrefix+session, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("conversation: acquire finalize guard: %w", err)
	}
	return ok, nil
}

func (g *RedisFinalizeGuard) Release(ctx context.Context, session string) error {
	if err := g.client.Del(ctx, finalizeKeyPrefix+session).Err(); err != nil {
		return fmt.Errorf("conversation: release finalize guard: %w", err)
	}
	return nil
}

type noopFinalizeGuard struct{}

func (noopFinalizeGuard) Acquire(context.Context, string) (bool, error) { return true, nil }
func (noopFinalizeGuard) Release(context.Context, string) error         { return nil }
