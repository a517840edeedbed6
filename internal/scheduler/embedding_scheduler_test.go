package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fadilmartias/job-matcher/internal/apperrors"
	"github.com/fadilmartias/job-matcher/internal/dto"
)

type countingGenerator struct {
	calls atomic.Int32
	err   error
}

func (g *countingGenerator) GenerateMissing(context.Context) (*dto.BatchSummary, error) {
	g.calls.Add(1)
	if g.err != nil {
		return nil, g.err
	}
	return &dto.BatchSummary{}, nil
}

func TestEmbeddingScheduler_Disabled(t *testing.T) {
	gen := &countingGenerator{}
	s := NewEmbeddingScheduler(gen, 0, zap.NewNop())

	assert.False(t, s.Enabled())
	assert.NoError(t, s.Start(context.Background()))
	assert.Zero(t, gen.calls.Load())
}

func TestEmbeddingScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	gen := &countingGenerator{}
	s := NewEmbeddingScheduler(gen, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	require.Eventually(t, func() bool { return gen.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestEmbeddingScheduler_SurvivesFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "conflict", err: apperrors.Conflict("embedding generation in progress", nil)},
		{name: "internal", err: errors.New("database unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &countingGenerator{err: tt.err}
			s := NewEmbeddingScheduler(gen, 5*time.Millisecond, zap.NewNop())

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go func() { _ = s.Start(ctx) }()

			require.Eventually(t, func() bool { return gen.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
		})
	}
}
