package memstore

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// AssetLocks serialises units of work per asset.
// Uses per-asset locks instead of one global lock
type AssetLocks struct {
	assetLocks map[uuid.UUID]chan struct{} // asset id → one-slot semaphore
	mapMutex   sync.RWMutex                // Protects the map itself
}

// NewAssetLocks creates an empty lock table
func NewAssetLocks() *AssetLocks {
	return &AssetLocks{
		assetLocks: make(map[uuid.UUID]chan struct{}),
	}
}

func (l *AssetLocks) slot(id uuid.UUID) chan struct{} {
	l.mapMutex.RLock()
	ch := l.assetLocks[id]
	l.mapMutex.RUnlock()
	if ch != nil {
		return ch
	}

	l.mapMutex.Lock()
	defer l.mapMutex.Unlock()
	if l.assetLocks[id] == nil {
		l.assetLocks[id] = make(chan struct{}, 1)
	}
	return l.assetLocks[id]
}

// Lock blocks until the asset is free or ctx is done
func (l *AssetLocks) Lock(ctx context.Context, id uuid.UUID) error {
	select {
	case l.slot(id) <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the asset. Unlocking a free asset is a no-op.
func (l *AssetLocks) Unlock(id uuid.UUID) {
	select {
	case <-l.slot(id):
	default:
	}
}
