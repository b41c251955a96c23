// Package sync provides keyed locking for read-modify-write cycles against
// the shared store.
package sync

import (
	"hash/fnv"
	"sync"
)

// DefaultShards is the shard count used by NewKeyLock when n is not positive.
const DefaultShards = 64

// KeyLock serializes work per key within one process. Keys are spread over a
// fixed set of mutexes, so unrelated keys may share a shard.
type KeyLock struct {
	shards []sync.Mutex
}

// NewKeyLock creates a KeyLock with n shards.
func NewKeyLock(n int) *KeyLock {
	if n <= 0 {
		n = DefaultShards
	}
	return &KeyLock{shards: make([]sync.Mutex, n)}
}

// Do runs fn while holding the shard lock of key.
func (l *KeyLock) Do(key string, fn func() error) error {
	mu := &l.shards[l.shardFor(key)]
	mu.Lock()
	defer mu.Unlock()
	return fn()
}

func (l *KeyLock) shardFor(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.shards)))
}
