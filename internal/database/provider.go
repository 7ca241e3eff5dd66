package database

import (
	"context"
	"fmt"
	"sync"
)

var (
	backendMu    sync.RWMutex
	backendName  string
	backendStore SnapshotStore
	backendClose func() error
)

// RegisterBackend registers the active snapshot store.
// This is called by the backend packages to avoid import cycles.
func RegisterBackend(name string, store SnapshotStore, closeFn func() error) {
	backendMu.Lock()
	defer backendMu.Unlock()
	backendName = name
	backendStore = store
	backendClose = closeFn
}

// BackendName returns the registered backend name, or "" if none.
func BackendName() string {
	backendMu.RLock()
	defer backendMu.RUnlock()
	return backendName
}

// GetSnapshotReader returns a SnapshotReader from the registered backend
func GetSnapshotReader(ctx context.Context) (SnapshotReader, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backendStore == nil {
		return nil, fmt.Errorf("snapshot backend not initialized: DATABASE_DRIVER and DATABASE_URL are required")
	}
	return backendStore, nil
}

// GetSnapshotWriter returns a SnapshotWriter from the registered backend
func GetSnapshotWriter(ctx context.Context) (SnapshotWriter, error) {
	backendMu.RLock()
	defer backendMu.RUnlock()
	if backendStore == nil {
		return nil, fmt.Errorf("snapshot backend not initialized: DATABASE_DRIVER and DATABASE_URL are required")
	}
	return backendStore, nil
}

// Close closes the registered backend and unregisters it.
func Close() error {
	backendMu.Lock()
	defer backendMu.Unlock()
	closeFn := backendClose
	backendName, backendStore, backendClose = "", nil, nil
	if closeFn == nil {
		return nil
	}
	return closeFn()
}
