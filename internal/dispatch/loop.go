// Package dispatch provides the single execution context that owns all
// subscription and permission state.
package dispatch

import (
	"sync"
)

// Executor runs tasks one after another on a single logical thread.
type Executor interface {
	Post(task func())
}

// Loop is a single-worker task queue. Tasks run in submission order and never
// overlap, so state touched only from tasks needs no locking.
type Loop struct {
	jobQueue  chan func()
	waitGroup sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewLoop starts a loop whose queue holds up to depth pending tasks.
func NewLoop(depth int) *Loop {
	if depth < 1 {
		depth = 1
	}
	l := &Loop{jobQueue: make(chan func(), depth)}

	l.waitGroup.Add(1)
	go l.worker()
	return l
}

// worker processes jobs from the jobQueue.
func (l *Loop) worker() {
	defer l.waitGroup.Done()
	for task := range l.jobQueue {
		task()
	}
}

// Post queues task. Tasks posted after Shutdown are dropped.
// Post blocks only while the queue is full.
func (l *Loop) Post(task func()) {
	l.post(task)
}

func (l *Loop) post(task func()) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return false
	}
	l.jobQueue <- task
	return true
}

// Sync posts task and waits for it to finish. It must not be called from a task.
func (l *Loop) Sync(task func()) {
	done := make(chan struct{})
	queued := l.post(func() {
		defer close(done)
		task()
	})
	if queued {
		<-done
	}
}

// Shutdown runs the queued tasks, then stops the worker.
func (l *Loop) Shutdown() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	close(l.jobQueue)
	l.mu.Unlock()

	l.waitGroup.Wait()
}

// Inline runs each task immediately on the caller's goroutine.
type Inline struct{}

// Post runs task synchronously.
func (Inline) Post(task func()) {
	task()
}
