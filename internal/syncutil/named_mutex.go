// Package syncutil contains synchronization helpers not found in the
// standard library.
package syncutil

import (
	"sync"

	"github.com/gogf/gf/encoding/ghash"
)

// NamedMutex locks and unlocks using an arbitrary []byte key, sharding the
// key space across a fixed pool of mutexes. Two distinct keys may collide
// onto the same underlying lock; that's an accepted tradeoff for a bounded
// number of mutexes.
type NamedMutex struct {
	locks []sync.RWMutex
	size  uint32
}

// NewNamedMutex creates a NamedMutex with the given shard count. Fewer
// than 2 shards is bumped up to 2.
func NewNamedMutex(maxMutexes uint32) *NamedMutex {
	if maxMutexes < 2 {
		maxMutexes = 2
	}
	return &NamedMutex{
		size:  maxMutexes,
		locks: make([]sync.RWMutex, maxMutexes),
	}
}

// Lock locks the shard for key, blocking until it's available.
func (mu *NamedMutex) Lock(key []byte) {
	mu.locks[ghash.SDBMHash(key)%mu.size].Lock()
}

// Unlock unlocks the shard for key.
func (mu *NamedMutex) Unlock(key []byte) {
	mu.locks[ghash.SDBMHash(key)%mu.size].Unlock()
}

// RLock read-locks the shard for key.
func (mu *NamedMutex) RLock(key []byte) {
	mu.locks[ghash.SDBMHash(key)%mu.size].RLock()
}

// RUnlock undoes a single RLock call for key.
func (mu *NamedMutex) RUnlock(key []byte) {
	mu.locks[ghash.SDBMHash(key)%mu.size].RUnlock()
}
