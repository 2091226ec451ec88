package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Allower decides whether one more event for key fits in the window.
type Allower interface {
	Allow(ctx context.Context, key string, window time.Duration, max int) (allowed bool, remaining int, reset time.Time, err error)
}

// slidingLogin trims attempts older than the window and records a new one
// only while under the limit; rejected attempts never move the unlock time.
// ARGV: now ms, cutoff ms, window ms, max, member.
var slidingLogin = redis.NewScript(`
local key = KEYS[1]
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local count = redis.call('ZCARD', key)
local allowed = 0
if count < tonumber(ARGV[4]) then
	redis.call('ZADD', key, ARGV[1], ARGV[5])
	count = count + 1
	allowed = 1
end
redis.call('PEXPIRE', key, ARGV[3])
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
return {allowed, count, oldest[2] or ARGV[1]}
`)

// SlidingWindow keeps one Redis sorted set of attempt timestamps per key.
// The window slides with the oldest attempt rather than resetting on a
// fixed boundary.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
	Now    func() time.Time
}

func (l SlidingWindow) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

// Allow implements Allower. The returned reset is when the oldest attempt in
// the window expires.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, max int) (bool, int, time.Time, error) {
	now := l.now()
	if l.Client == nil || max <= 0 || window <= 0 {
		return true, max, now.Add(window), nil
	}
	nowMs := now.UnixMilli()
	res, err := slidingLogin.Run(ctx, l.Client, []string{l.Prefix + key},
		nowMs, nowMs-window.Milliseconds(), window.Milliseconds(), max, uuid.NewString()).Slice()
	if err != nil {
		return false, 0, now.Add(window), err
	}
	if len(res) != 3 {
		return false, 0, now.Add(window), fmt.Errorf("sliding window: unexpected reply %v", res)
	}
	flag, _ := res[0].(int64)
	count, _ := res[1].(int64)
	first, err := strconv.ParseFloat(fmt.Sprint(res[2]), 64)
	if err != nil {
		return false, 0, now.Add(window), fmt.Errorf("sliding window: oldest score: %w", err)
	}
	allowed := flag == 1
	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return allowed, remaining, time.UnixMilli(int64(first)).Add(window), nil
}
