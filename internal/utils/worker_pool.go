package utils

import (
	"log"
	"sync"
)

// WorkerPool 通用协程池
// 告警通知在事务提交后经由协程池异步派发，通知失败不会回滚告警
type WorkerPool struct {
	JobQueue  chan func()
	WorkerNum int
	wg        sync.WaitGroup
	quit      chan bool
}

// NewWorkerPool 创建一个新的协程池
func NewWorkerPool(workerNum int, queueSize int) *WorkerPool {
	if workerNum <= 0 {
		workerNum = 4
	}
	if queueSize <= 0 {
		queueSize = 256
	}
	return &WorkerPool{
		JobQueue:  make(chan func(), queueSize),
		WorkerNum: workerNum,
		quit:      make(chan bool),
	}
}

// Start 启动协程池
func (p *WorkerPool) Start() {
	for i := 0; i < p.WorkerNum; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			for {
				select {
				case job := <-p.JobQueue:
					// 使用 defer recover 防止单个任务 panic 导致 worker 挂掉
					func() {
						defer func() {
							if r := recover(); r != nil {
								log.Printf("Worker %d panic: %v", workerID, r)
							}
						}()
						job()
					}()
				case <-p.quit:
					return
				}
			}
		}(i)
	}
}

// Submit 提交任务到协程池
// 队列已满时丢弃任务并返回 false，通知属于尽力而为的旁路效果
func (p *WorkerPool) Submit(job func()) bool {
	select {
	case p.JobQueue <- job:
		return true
	default:
		return false
	}
}

// Stop 停止协程池
func (p *WorkerPool) Stop() {
	close(p.quit)
	p.wg.Wait()
}
