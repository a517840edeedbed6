package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
)

// releaseScript deletes the lock only if this holder still owns it.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// renewScript pushes the expiry out only if this holder still owns the lock.
const renewScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

// Locker is a single-key lock shared by every process that talks to the same
// Redis. The holder renews the TTL every third of it while the lock is held;
// the TTL only reclaims a lock whose holder died without releasing it.
type Locker struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewLocker(client *redis.Client, key string, ttl time.Duration, logger *zap.Logger) *Locker {
	return &Locker{client: client, key: key, ttl: ttl, logger: logger}
}

func (l *Locker) TryLock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, apperrors.Internal("failed to acquire generation lock", err)
	}
	if !ok {
		return nil, apperrors.Conflict("embedding generation in progress", nil)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		l.renew(token, stop)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := l.client.Eval(releaseCtx, releaseScript, []string{l.key}, token).Err(); err != nil {
				l.logger.Warn("failed to release generation lock", zap.String("key", l.key), zap.Error(err))
			}
		})
	}, nil
}

func (l *Locker) renew(token string, stop <-chan struct{}) {
	ticker := time.NewTicker(max(l.ttl/3, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), max(l.ttl/3, time.Second))
		renewed, err := l.client.Eval(ctx, renewScript, []string{l.key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			l.logger.Warn("failed to renew generation lock", zap.String("key", l.key), zap.Error(err))
			continue
		}
		if renewed == 0 {
			l.logger.Error("generation lock lost to another holder", zap.String("key", l.key))
			return
		}
	}
}
