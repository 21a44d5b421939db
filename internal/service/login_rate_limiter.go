package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// LoginRateLimiter limita los intentos de login por phone y country.
type LoginRateLimiter interface {
	Allow(ctx context.Context, country, phone string) bool
}

// loginAttemptKey identifica al usuario del mismo modo que FindByPhone:
// country en mayusculas y phone tal cual, sin espacios alrededor.
func loginAttemptKey(country, phone string) string {
	country = strings.ToUpper(strings.TrimSpace(country))
	phone = strings.TrimSpace(phone)
	if country == "" || phone == "" {
		return ""
	}
	return country + ":" + phone
}

type loginWindow struct {
	count   int
	resetAt time.Time
}

// memoryLoginRateLimiter cuenta intentos en ventanas fijas. Las ventanas
// vencidas se barren como mucho una vez por ventana.
type memoryLoginRateLimiter struct {
	mu        sync.Mutex
	window    time.Duration
	max       int
	now       func() time.Time
	nextSweep time.Time
	attempts  map[string]loginWindow
}

func NewLoginRateLimiter(window time.Duration, max int) LoginRateLimiter {
	return newMemoryLoginRateLimiter(window, max, nil)
}

func newMemoryLoginRateLimiter(window time.Duration, max int, now func() time.Time) *memoryLoginRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	if now == nil {
		now = time.Now
	}
	return &memoryLoginRateLimiter{
		window:   window,
		max:      max,
		now:      now,
		attempts: make(map[string]loginWindow),
	}
}

func (l *memoryLoginRateLimiter) Allow(_ context.Context, country, phone string) bool {
	key := loginAttemptKey(country, phone)
	if key == "" {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	l.sweepLocked(now)

	w, ok := l.attempts[key]
	if !ok || !now.Before(w.resetAt) {
		l.attempts[key] = loginWindow{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if w.count >= l.max {
		return false
	}
	w.count++
	l.attempts[key] = w
	return true
}

func (l *memoryLoginRateLimiter) sweepLocked(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for key, w := range l.attempts {
		if !now.Before(w.resetAt) {
			delete(l.attempts, key)
		}
	}
	l.nextSweep = now.Add(l.window)
}

// loginAttemptScript incrementa el contador y fija el vencimiento solo en el
// primer intento de la ventana.
const loginAttemptScript = `
local attempts = redis.call("INCR", KEYS[1])
if attempts == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return attempts
`

type redisScripter interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisLoginRateLimiter struct {
	client  redisScripter
	logger  *zap.Logger
	window  time.Duration
	max     int
	timeout time.Duration
}

func NewRedisLoginRateLimiter(client *redis.Client, logger *zap.Logger, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisLoginRateLimiter(client, logger, window, max)
}

func newRedisLoginRateLimiter(client redisScripter, logger *zap.Logger, window time.Duration, max int) *redisLoginRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client:  client,
		logger:  logger,
		window:  window,
		max:     max,
		timeout: 500 * time.Millisecond,
	}
}

// Allow falla abierto si Redis no responde: el login no depende del limiter.
func (l *redisLoginRateLimiter) Allow(ctx context.Context, country, phone string) bool {
	key := loginAttemptKey(country, phone)
	if key == "" {
		return true
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	attempts, err := l.client.Eval(ctx, loginAttemptScript, []string{"login:attempts:" + key}, l.window.Milliseconds()).Int()
	if err != nil {
		l.logger.Warn("login rate limiter unavailable, allowing attempt", zap.Error(err))
		return true
	}
	return attempts <= l.max
}
