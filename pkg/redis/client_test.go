package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

func TestCacheGenerationLifecycle(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	gen, err := client.CacheGeneration(ctx, "pending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen != 0 {
		t.Fatalf("expected generation 0 before first invalidation, got %d", gen)
	}

	if err := client.InvalidateCache(ctx, "pending"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}
	gen, err = client.CacheGeneration(ctx, "pending")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen != 1 {
		t.Fatalf("expected generation 1 after invalidation, got %d", gen)
	}

	before := client.CacheKey("pending", 0, "all")
	after := client.CacheKey("pending", gen, "all")
	if before == after {
		t.Fatal("expected invalidation to change the cache key")
	}
}

func TestCacheKeyShape(t *testing.T) {
	client := &Client{}
	if got := client.CacheKey("products", 3, "page", "2"); got != "clinic:cache:products:g3:page:2" {
		t.Fatalf("unexpected cache key %s", got)
	}
	if got := client.AccessSessionKey("abc"); got != "clinic:session:access:abc" {
		t.Fatalf("unexpected session key %s", got)
	}
}

func TestSetNXOnlyFirstWins(t *testing.T) {
	ctx := context.Background()
	client := &Client{store: newMockCmdable()}

	ok, err := client.SetNX(ctx, "k", "v1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first SetNX should win: ok=%v err=%v", ok, err)
	}
	ok, err = client.SetNX(ctx, "k", "v2", time.Minute)
	if err != nil || ok {
		t.Fatalf("second SetNX should lose: ok=%v err=%v", ok, err)
	}
	got, err := client.Get(ctx, "k")
	if err != nil || got != "v1" {
		t.Fatalf("expected v1, got %q err=%v", got, err)
	}
}

type mockCmdable struct {
	data map[string]string
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{data: make(map[string]string)}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	m.data[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}

func (m *mockCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *mockCmdable) SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd {
	if _, exists := m.data[key]; exists {
		return redis.NewBoolResult(false, nil)
	}
	m.data[key] = fmt.Sprint(value)
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	var current int64
	fmt.Sscanf(m.data[key], "%d", &current)
	current++
	m.data[key] = fmt.Sprint(current)
	return redis.NewIntResult(current, nil)
}

func (m *mockCmdable) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.data, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
