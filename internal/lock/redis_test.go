package lock

import (
	"context"
	"testing"
	"time"
)

// A locker without a configured client must grant every acquisition so the
// portal keeps working when Redis is not deployed.
func TestRedisLockerNilClient(t *testing.T) {
	ctx := context.Background()

	var nilLocker *RedisLocker
	ok, err := nilLocker.Acquire(ctx, "batch:test", time.Minute)
	if err != nil {
		t.Fatalf("Acquire on nil locker returned error: %v", err)
	}
	if !ok {
		t.Error("Acquire on nil locker should succeed")
	}
	if err := nilLocker.Release(ctx, "batch:test"); err != nil {
		t.Errorf("Release on nil locker returned error: %v", err)
	}

	empty := NewRedisLocker(nil)
	ok, err = empty.Acquire(ctx, "batch:test", time.Minute)
	if err != nil {
		t.Fatalf("Acquire with nil client returned error: %v", err)
	}
	if !ok {
		t.Error("Acquire with nil client should succeed")
	}
	if err := empty.Close(); err != nil {
		t.Errorf("Close with nil client returned error: %v", err)
	}
}

func TestNewRedisLockerFromEnvUnset(t *testing.T) {
	t.Setenv("REDIS_URL", "")
	l := NewRedisLockerFromEnv()
	if l.client != nil {
		t.Error("expected nil client when REDIS_URL is unset")
	}
}

func TestNewRedisLockerFromEnvInvalid(t *testing.T) {
	t.Setenv("REDIS_URL", "not-a-url")
	l := NewRedisLockerFromEnv()
	if l.client != nil {
		t.Error("expected nil client for an unparseable REDIS_URL")
	}
}
