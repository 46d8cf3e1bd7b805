package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/iho/goreporte/internal/usecase"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "report:elio:abril", []byte(`{"facturas":[]}`), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "report:elio:abril")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if string(val) != `{"facturas":[]}` {
		t.Fatalf("unexpected value %s", val)
	}

	if !mr.Exists("goreporte:report:elio:abril") {
		t.Fatalf("expected key to be stored under the goreporte prefix")
	}
}

func TestCacheMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	_, err := NewCache(client).Get(context.Background(), "absent")
	if !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}
}

func TestCacheExpires(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "k", []byte("v"), 30*time.Second); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if ttl := mr.TTL("goreporte:k"); ttl != 30*time.Second {
		t.Fatalf("expected 30s ttl, got %v", ttl)
	}

	mr.FastForward(31 * time.Second)

	if _, err := cache.Get(ctx, "k"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected expired key to miss, got %v", err)
	}
}

func TestCacheDelete(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "foo", []byte("bar"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.Delete(ctx, "foo"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := cache.Get(ctx, "foo"); !errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected miss getting deleted key, got %v", err)
	}
}

func TestCacheUnavailable(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer client.Close()
	mr.Close()

	_, err := NewCache(client).Get(context.Background(), "foo")
	if err == nil || errors.Is(err, usecase.ErrCacheMiss) {
		t.Fatalf("expected connection error, got %v", err)
	}
}
