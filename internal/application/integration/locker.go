package integration

import (
	"context"
	"sync"

	"github.com/erp/storesync/internal/domain/integration"
)

// SyncLocker serialises passes of the same kind. Acquire fails with
// ErrSyncInProgress instead of waiting; release must be called once.
type SyncLocker interface {
	Acquire(ctx context.Context, kind integration.SyncKind) (release func(), err error)
}

// LocalSyncLocker is an in-process SyncLocker for single instance deployments
type LocalSyncLocker struct {
	mu    sync.Mutex
	locks map[integration.SyncKind]*sync.Mutex
}

// NewLocalSyncLocker creates a new LocalSyncLocker
func NewLocalSyncLocker() *LocalSyncLocker {
	return &LocalSyncLocker{locks: make(map[integration.SyncKind]*sync.Mutex)}
}

// Acquire takes the per-kind lock without blocking
func (l *LocalSyncLocker) Acquire(_ context.Context, kind integration.SyncKind) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[kind]
	if !ok {
		m = &sync.Mutex{}
		l.locks[kind] = m
	}
	l.mu.Unlock()

	if !m.TryLock() {
		return nil, integration.ErrSyncInProgress
	}
	var once sync.Once
	return func() { once.Do(m.Unlock) }, nil
}

var _ SyncLocker = (*LocalSyncLocker)(nil)
