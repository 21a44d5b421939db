package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type fakeScripter struct {
	keys   []string
	args   []interface{}
	result int64
	err    error
	ctxErr error
}

func (f *fakeScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	f.keys = keys
	f.args = args
	f.ctxErr = ctx.Err()
	cmd := redis.NewCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	cmd.SetVal(f.result)
	return cmd
}

func TestLoginAttemptKey(t *testing.T) {
	cases := []struct {
		country, phone, want string
	}{
		{"US", "5551234", "US:5551234"},
		{" us ", " 5551234 ", "US:5551234"},
		{"", "5551234", ""},
		{"US", "  ", ""},
	}
	for _, tc := range cases {
		if got := loginAttemptKey(tc.country, tc.phone); got != tc.want {
			t.Fatalf("loginAttemptKey(%q, %q) = %q, want %q", tc.country, tc.phone, got, tc.want)
		}
	}
}

func TestMemoryLoginRateLimiter_Window(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newMemoryLoginRateLimiter(time.Minute, 2, func() time.Time { return now })
	ctx := context.Background()

	if !l.Allow(ctx, "US", "555") || !l.Allow(ctx, "US", "555") {
		t.Fatalf("expected first two attempts allowed")
	}
	if l.Allow(ctx, "US", "555") {
		t.Fatalf("expected third attempt denied")
	}
	if !l.Allow(ctx, "MX", "555") {
		t.Fatalf("expected country to be part of the key")
	}

	now = now.Add(time.Minute)
	if !l.Allow(ctx, "US", "555") {
		t.Fatalf("expected a new window after expiry")
	}
}

func TestMemoryLoginRateLimiter_SweepsExpiredWindows(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l := newMemoryLoginRateLimiter(time.Minute, 3, func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		l.Allow(ctx, "US", fmt.Sprintf("555%02d", i))
	}
	if len(l.attempts) != 50 {
		t.Fatalf("expected 50 tracked keys, got %d", len(l.attempts))
	}

	now = now.Add(2 * time.Minute)
	l.Allow(ctx, "AR", "1111")
	if len(l.attempts) != 1 {
		t.Fatalf("expected expired windows swept, got %d keys", len(l.attempts))
	}
}

func TestMemoryLoginRateLimiter_IncompleteCredentialsNotTracked(t *testing.T) {
	l := newMemoryLoginRateLimiter(time.Minute, 1, nil)
	for i := 0; i < 3; i++ {
		if !l.Allow(context.Background(), "", "555") {
			t.Fatalf("incomplete credentials should be left to the authenticator")
		}
	}
	if len(l.attempts) != 0 {
		t.Fatalf("expected nothing tracked, got %d", len(l.attempts))
	}
}

func TestRedisLoginRateLimiterAllow(t *testing.T) {
	t.Run("key and window", func(t *testing.T) {
		f := &fakeScripter{result: 2}
		l := newRedisLoginRateLimiter(f, zap.NewNop(), 2*time.Minute, 3)
		if !l.Allow(context.Background(), "us", "5551234") {
			t.Fatalf("expected allow when attempts <= max")
		}
		if len(f.keys) != 1 || f.keys[0] != "login:attempts:US:5551234" {
			t.Fatalf("unexpected key %+v", f.keys)
		}
		if len(f.args) != 1 || f.args[0] != int64(120000) {
			t.Fatalf("expected window in ms, got %+v", f.args)
		}
	})

	t.Run("deny over max", func(t *testing.T) {
		l := newRedisLoginRateLimiter(&fakeScripter{result: 4}, nil, time.Minute, 3)
		if l.Allow(context.Background(), "US", "555") {
			t.Fatalf("expected deny when attempts > max")
		}
	})

	t.Run("fail-open on redis error", func(t *testing.T) {
		l := newRedisLoginRateLimiter(&fakeScripter{err: errors.New("redis down")}, nil, time.Minute, 3)
		if !l.Allow(context.Background(), "US", "555") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})

	t.Run("uses caller context", func(t *testing.T) {
		f := &fakeScripter{result: 1}
		l := newRedisLoginRateLimiter(f, nil, time.Minute, 3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		l.Allow(ctx, "US", "555")
		if !errors.Is(f.ctxErr, context.Canceled) {
			t.Fatalf("expected the caller's cancellation to reach redis, got %v", f.ctxErr)
		}
	})

	t.Run("incomplete credentials skip redis", func(t *testing.T) {
		f := &fakeScripter{result: 1}
		l := newRedisLoginRateLimiter(f, nil, time.Minute, 3)
		if !l.Allow(context.Background(), "US", " ") || f.keys != nil {
			t.Fatalf("expected no redis call for incomplete credentials")
		}
	})
}
