package usecase

import (
	"context"
	"sync"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
)

// Locker guards "embedding generation in progress". TryLock never waits: it
// either returns a release func or a CONFLICT error.
type Locker interface {
	TryLock(ctx context.Context) (func(), error)
}

// LocalLocker serialises runs inside one process.
type LocalLocker struct {
	mu sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{}
}

func (l *LocalLocker) TryLock(_ context.Context) (func(), error) {
	if !l.mu.TryLock() {
		return nil, apperrors.Conflict("embedding generation in progress", nil)
	}
	return l.mu.Unlock, nil
}
