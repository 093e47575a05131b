package keylock

import (
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// TestKeyLock_Property_StripeStability checks that the stripe index is
// a pure function of the key and always in range, for arbitrary keys
// and stripe counts.
func TestKeyLock_Property_StripeStability(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		stripes := rapid.IntRange(1, 4096).Draw(t, "stripes")
		key := rapid.String().Draw(t, "key")

		kl := New(stripes)

		idx := kl.index(key)
		if idx >= uint64(len(kl.stripes)) {
			t.Fatalf("index %d out of range for %d stripes", idx, len(kl.stripes))
		}
		for i := 0; i < 5; i++ {
			if kl.index(key) != idx {
				t.Fatalf("index for %q not stable", key)
			}
		}
	})
}

// TestKeyLock_Property_CounterUnderContention increments a plain (unsynchronized
// by itself) counter per key under the key lock and checks the final totals,
// which would be lost-update racy without mutual exclusion.
func TestKeyLock_Property_CounterUnderContention(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		keys := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,8}`), 1, 8).Draw(t, "keys")
		perKey := rapid.IntRange(1, 50).Draw(t, "perKey")

		kl := New(8)

		// Pre-populate so the map itself is never mutated concurrently;
		// each counter is only written under its key's stripe.
		counters := make(map[string]*int, len(keys))
		for _, key := range keys {
			if _, ok := counters[key]; !ok {
				counters[key] = new(int)
			}
		}

		var wg sync.WaitGroup
		for _, key := range keys {
			for i := 0; i < perKey; i++ {
				wg.Add(1)
				go func(k string) {
					defer wg.Done()
					kl.WithLock(k, func() {
						*counters[k] = *counters[k] + 1
					})
				}(key)
			}
		}
		wg.Wait()

		for key, got := range counters {
			want := 0
			for _, k := range keys {
				if k == key {
					want += perKey
				}
			}
			if *got != want {
				t.Fatalf("counter for %q = %d, want %d", key, *got, want)
			}
		}
	})
}
