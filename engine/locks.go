package engine

import "sync"

// userLocks serializes Start/Resume per (tenant, userPhone). Runs for
// different users never contend; two replies racing for the same user
// take the lock in some order and the loser sees the updated run state.
type userLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[string]*sync.Mutex)}
}

func (ul *userLocks) get(tenantId string, userPhone string) *sync.Mutex {
	key := tenantId + "|" + userPhone
	ul.mu.Lock()
	defer ul.mu.Unlock()
	lock, ok := ul.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		ul.locks[key] = lock
	}
	return lock
}
