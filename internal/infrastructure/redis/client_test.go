package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
)

func TestNewClientSuccess(t *testing.T) {
	s := miniredis.RunT(t)
	defer s.Close()

	ctx := context.Background()
	client, err := NewClient(ctx, fmt.Sprintf("redis://%s", s.Addr()))
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	if err := Pinger(client)(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func TestNewClientWithOptionsAppliesTimeouts(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClientWithOptions(context.Background(), Options{
		URL:         fmt.Sprintf("redis://%s/2", s.Addr()),
		DialTimeout: time.Second,
		OpTimeout:   250 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("expected client, got error: %v", err)
	}
	defer client.Close()

	opts := client.Options()
	if opts.DB != 2 || opts.DialTimeout != time.Second || opts.ReadTimeout != 250*time.Millisecond || opts.WriteTimeout != 250*time.Millisecond {
		t.Fatalf("unexpected options: db=%d dial=%s read=%s write=%s", opts.DB, opts.DialTimeout, opts.ReadTimeout, opts.WriteTimeout)
	}
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient(context.Background(), "://bad-url")
	if err == nil {
		t.Fatalf("expected error for invalid URL")
	}
}

func TestNewClientPingFailure(t *testing.T) {
	s := miniredis.RunT(t)
	url := fmt.Sprintf("redis://%s", s.Addr())
	s.Close() // close before attempting to connect

	_, err := NewClient(context.Background(), url)
	if err == nil {
		t.Fatalf("expected ping error when server is down")
	}
}
