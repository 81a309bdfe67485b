package approval

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix  = "booking:approve:"
	defaultLockTTL = 30 * time.Second
)

// releaseScript deletes the lock only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Guard is a Redis lock per booking. The TTL bounds how long a crashed
// holder can block other approvals.
type Guard struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewGuard creates a new approval guard.
func NewGuard(client redis.UniversalClient, ttl time.Duration) *Guard {
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &Guard{client: client, ttl: ttl}
}

// Acquire takes the lock for bookingID. ok is false when someone else holds it.
func (g *Guard) Acquire(ctx context.Context, bookingID uuid.UUID) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, lockKey(bookingID), token, g.ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("acquire approval lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release drops the lock if token still owns it.
func (g *Guard) Release(ctx context.Context, bookingID uuid.UUID, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{lockKey(bookingID)}, token).Err(); err != nil {
		return fmt.Errorf("release approval lock: %w", err)
	}
	return nil
}

func lockKey(bookingID uuid.UUID) string {
	return lockKeyPrefix + bookingID.String()
}
