package redis

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Lock is a short-lived SetNX guard per attendance tuple. It only exists to
// reject the second of two near-simultaneous scans cheaply; the database's
// unique index remains the source of truth.
type Lock struct {
	Client *redis.Client
	Logger *log.Logger
}

func NewLock(client *redis.Client) *Lock {
	return &Lock{
		Client: client,
		Logger: log.Default(),
	}
}

// getLockDuration returns the tuple lock TTL from the environment or the
// default value.
func (l *Lock) getLockDuration() time.Duration {
	defaultDuration := 10 * time.Second

	ttlStr := os.Getenv("SCAN_LOCK_TTL_SECONDS")
	if ttlStr == "" {
		return defaultDuration
	}

	ttlSec, err := strconv.Atoi(ttlStr)
	if err != nil {
		l.Logger.Println("REDIS: Invalid SCAN_LOCK_TTL_SECONDS value '" + ttlStr + "', using default 10 seconds")
		return defaultDuration
	}
	return time.Duration(ttlSec) * time.Second
}

// LockTuple acquires the lock for one attendance tuple. Returns false when
// another scan currently holds it.
func (l *Lock) LockTuple(ctx context.Context, key, token string) (bool, error) {
	return l.Client.SetNX(ctx, "attendance_lock:"+key, token, l.getLockDuration()).Result()
}

// UnlockTuple releases the lock, but only if this scan still owns it.
func (l *Lock) UnlockTuple(ctx context.Context, key, token string) error {
	redisKey := "attendance_lock:" + key
	val, err := l.Client.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		if _, err := l.Client.Del(ctx, redisKey).Result(); err != nil {
			return fmt.Errorf("failed to release tuple lock %s: %w", key, err)
		}
	}
	return nil
}
