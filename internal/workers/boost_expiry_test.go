package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFinalizer struct {
	calls atomic.Int64
}

func (f *countingFinalizer) FinalizeExpiredBoosts(ctx context.Context) (int, error) {
	f.calls.Add(1)
	return 0, nil
}

func TestBoostExpiryWorkerPolls(t *testing.T) {
	finalizer := &countingFinalizer{}
	worker, err := NewBoostExpiryWorker(finalizer, 20*time.Millisecond)
	require.NoError(t, err)

	worker.Start()
	defer worker.Stop()

	deadline := time.After(3 * time.Second)
	for finalizer.calls.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("worker never ran the finalizer")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestBoostExpiryWorkerStops(t *testing.T) {
	finalizer := &countingFinalizer{}
	worker, err := NewBoostExpiryWorker(finalizer, 20*time.Millisecond)
	require.NoError(t, err)

	worker.Start()
	time.Sleep(100 * time.Millisecond)
	worker.Stop()

	settled := finalizer.calls.Load()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, settled, finalizer.calls.Load(), "no runs after shutdown")
}
