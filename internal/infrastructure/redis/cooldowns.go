package redisinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// reserveScript compares the stored issuance time with now and, when the
// window has elapsed, stores now with the cooldown as key expiry.
var reserveScript = redis.NewScript(`
local now_ms = tonumber(ARGV[1])
local cooldown_ms = tonumber(ARGV[2])

local last = redis.call("GET", KEYS[1])
if last and (now_ms - tonumber(last)) < cooldown_ms then
  return 0
end

redis.call("SET", KEYS[1], ARGV[1], "PX", ARGV[2])
return 1
`)

// CooldownTracker stores the last issuance per identity in Redis.
type CooldownTracker struct {
	client redis.UniversalClient
	prefix string
}

func NewCooldownTracker(client redis.UniversalClient, prefix string) *CooldownTracker {
	if prefix == "" {
		prefix = "otp"
	}
	return &CooldownTracker{client: client, prefix: prefix}
}

func (t *CooldownTracker) TryReserve(ctx context.Context, identity string, now time.Time, cooldown time.Duration) (bool, error) {
	cooldownMS := cooldown.Milliseconds()
	if cooldownMS <= 0 {
		cooldownMS = 1
	}
	n, err := reserveScript.Run(ctx, t.client,
		[]string{key(t.prefix, "cooldown", identity)},
		now.UnixMilli(), cooldownMS,
	).Int64()
	if err != nil {
		return false, fmt.Errorf("redis reserve cooldown: %w", err)
	}
	return n == 1, nil
}
