package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "lock:"

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// DistLock is a single-holder lease. Only the token that acquired it can release it.
type DistLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func (l *DistLock) key(name string) string {
	return LockKeyPrefix + name
}

// Acquire takes the lease for TTL. false means another holder has it.
func (l *DistLock) Acquire(ctx context.Context, name, token string) (bool, error) {
	return l.RDB.SetNX(ctx, l.key(name), token, l.TTL).Result()
}

// Release uses a script so a lease taken over after expiry is not deleted.
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{l.key(name)}, token).Err()
}
