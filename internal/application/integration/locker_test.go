package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/storesync/internal/domain/integration"
)

func TestLocalSyncLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocalSyncLocker()

	release, err := l.Acquire(ctx, integration.SyncKindOrders)
	require.NoError(t, err)

	_, err = l.Acquire(ctx, integration.SyncKindOrders)
	assert.ErrorIs(t, err, integration.ErrSyncInProgress)

	other, err := l.Acquire(ctx, integration.SyncKindProducts)
	require.NoError(t, err)
	other()

	release()
	release() // second call is a no-op

	again, err := l.Acquire(ctx, integration.SyncKindOrders)
	require.NoError(t, err)
	again()
}

func TestLocalSyncLocker_OneWinnerUnderContention(t *testing.T) {
	const workers = 16
	l := NewLocalSyncLocker()
	var (
		wg      sync.WaitGroup
		winners atomic.Int32
		losers  = make(chan struct{}, workers)
		hold    = make(chan struct{})
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), integration.SyncKindCategories)
			if err != nil {
				losers <- struct{}{}
				return
			}
			winners.Add(1)
			<-hold
			release()
		}()
	}
	// The winner holds the lock until every other worker has been turned away
	for i := 0; i < workers-1; i++ {
		<-losers
	}
	close(hold)
	wg.Wait()
	assert.Equal(t, int32(1), winners.Load())
}
