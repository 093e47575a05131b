package keylock

import (
	"time"

	"github.com/twmb/murmur3"
)

// DefaultStripes is the default number of lock stripes.
// Must be a power of two so the hash can be masked instead of modded.
const DefaultStripes = 256

// KeyLock provides per-key mutual exclusion backed by a fixed set of
// striped mutexes. Two different keys may share a stripe, which is safe
// (it only serializes more than strictly necessary); the same key always
// maps to the same stripe, which is what correctness requires.
//
// It is used to serialize operations on a (group, alert type) pair so
// that concurrent triggers cannot create two open alerts for the pair.
type KeyLock struct {
	stripes []chan struct{}
	mask    uint64
}

// New creates a KeyLock with the given number of stripes.
// The stripe count is rounded up to the next power of two.
func New(stripes int) *KeyLock {
	if stripes <= 0 {
		stripes = DefaultStripes
	}
	n := 1
	for n < stripes {
		n <<= 1
	}

	kl := &KeyLock{
		stripes: make([]chan struct{}, n),
		mask:    uint64(n - 1),
	}
	for i := range kl.stripes {
		kl.stripes[i] = make(chan struct{}, 1)
	}
	return kl
}

// index maps a key to its stripe using murmur3.
func (kl *KeyLock) index(key string) uint64 {
	return murmur3.SeedSum64(0, []byte(key)) & kl.mask
}

// Lock acquires the stripe for key, blocking until it is available.
func (kl *KeyLock) Lock(key string) {
	kl.stripes[kl.index(key)] <- struct{}{}
}

// Unlock releases the stripe for key.
// Unlocking a key that was never locked is a programming error and
// will block forever, matching sync.Mutex semantics of misuse.
func (kl *KeyLock) Unlock(key string) {
	<-kl.stripes[kl.index(key)]
}

// TryLock attempts to acquire the stripe for key without blocking.
// Returns true if the lock was acquired.
func (kl *KeyLock) TryLock(key string) bool {
	select {
	case kl.stripes[kl.index(key)] <- struct{}{}:
		return true
	default:
		return false
	}
}

// LockTimeout acquires the stripe for key, giving up after the timeout.
// Returns true if the lock was acquired.
func (kl *KeyLock) LockTimeout(key string, timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case kl.stripes[kl.index(key)] <- struct{}{}:
		return true
	case <-timer.C:
		return false
	}
}

// WithLock runs fn while holding the stripe for key.
func (kl *KeyLock) WithLock(key string, fn func()) {
	kl.Lock(key)
	defer kl.Unlock(key)
	fn()
}
