// Package otp implements the one-time passcode gate for bookings. Codes live
// in an explicit keyed store created at process start; nothing is persisted
// across restarts.
package otp

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store holds one pending code per booking. Claim removes the code on a
// successful match so every code verifies at most once.
type Store interface {
	Save(ctx context.Context, bookingID int64, code string) error
	Claim(ctx context.Context, bookingID int64, code string) (bool, error)
}

// RedisStore keeps codes in redis with a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore returns a redis-backed store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(bookingID int64) string {
	return fmt.Sprintf("otp:%d", bookingID)
}

// claimScript deletes the key only when it holds the expected code, so two
// concurrent claims with the correct code cannot both succeed and a wrong
// guess does not consume the stored code.
var claimScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Save stores the code, replacing any previous one for the booking.
func (s *RedisStore) Save(ctx context.Context, bookingID int64, code string) error {
	return s.client.Set(ctx, s.key(bookingID), code, s.ttl).Err()
}

// Claim atomically compares and deletes the code on a match.
func (s *RedisStore) Claim(ctx context.Context, bookingID int64, code string) (bool, error) {
	deleted, err := claimScript.Run(ctx, s.client, []string{s.key(bookingID)}, code).Int()
	if err != nil {
		return false, err
	}
	return deleted == 1, nil
}
