// Package runstore persists acquisition runs and per-candidate outcomes.
package runstore

import (
	"sync"

	"github.com/Codegass/repodigger/internal/contract"
)

// Table names for run tracking.
const (
	runsTable     = "repodigger_runs"
	outcomesTable = "repodigger_outcomes"
)

// RunStoreManager guards the process-wide run store.
type RunStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	store        contract.RunStore
}

// GetRunStore returns the configured store, or nil before InitRunStore.
func (mgr *RunStoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.store
}
