package utils

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWorkerPoolRunsJobs(t *testing.T) {
	pool := NewWorkerPool(4, 64)
	pool.Start()
	defer pool.Stop()

	var counter int64
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		ok := pool.Submit(func() {
			defer wg.Done()
			atomic.AddInt64(&counter, 1)
		})
		assert.True(t, ok)
	}
	wg.Wait()

	assert.EqualValues(t, 50, atomic.LoadInt64(&counter))
}

func TestWorkerPoolRejectsWhenFull(t *testing.T) {
	pool := NewWorkerPool(1, 1)
	// 不启动 worker，队列填满后 Submit 返回 false
	assert.True(t, pool.Submit(func() {}))
	assert.False(t, pool.Submit(func() {}))
}

func TestWorkerPoolRecoversFromPanic(t *testing.T) {
	pool := NewWorkerPool(1, 8)
	pool.Start()
	defer pool.Stop()

	done := make(chan struct{})
	pool.Submit(func() { panic("boom") })
	pool.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not survive panic")
	}
}

func TestWorkerPoolDefaults(t *testing.T) {
	pool := NewWorkerPool(0, 0)
	assert.Equal(t, 4, pool.WorkerNum)
	assert.Equal(t, 256, cap(pool.JobQueue))
}
