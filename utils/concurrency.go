package utils

import (
	"fmt"
	"sync"
	"time"
)

// WorkerPool runs jobs on at most maxWorkers goroutines. Consecutive job
// starts are spaced by at least the stagger interval, and a job that panics
// is recovered and reported through the pool's panic handler.
type WorkerPool struct {
	semaphore chan struct{}
	wg        sync.WaitGroup
	stagger   time.Duration
	onPanic   func(recovered any)

	mu        sync.Mutex
	lastStart time.Time
}

// NewWorkerPool creates a WorkerPool with the given concurrency and start stagger.
func NewWorkerPool(maxWorkers int, stagger time.Duration) *WorkerPool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool{
		semaphore: make(chan struct{}, maxWorkers),
		stagger:   stagger,
	}
}

// OnPanic sets the handler called with the value of a recovered job panic.
func (wp *WorkerPool) OnPanic(fn func(recovered any)) {
	wp.onPanic = fn
}

// Submit enqueues a job, blocking while all workers are busy.
func (wp *WorkerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.semaphore <- struct{}{}

	go func() {
		defer wp.wg.Done()
		defer func() { <-wp.semaphore }()
		defer func() {
			if r := recover(); r != nil && wp.onPanic != nil {
				wp.onPanic(r)
			}
		}()

		wp.waitForSlot()
		job()
	}()
}

// Wait blocks until all submitted jobs have completed.
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) waitForSlot() {
	if wp.stagger <= 0 {
		return
	}
	wp.mu.Lock()
	defer wp.mu.Unlock()

	if !wp.lastStart.IsZero() {
		if elapsed := time.Since(wp.lastStart); elapsed < wp.stagger {
			time.Sleep(wp.stagger - elapsed)
		}
	}
	wp.lastStart = time.Now()
}

// PanicError wraps a recovered panic value as an error.
func PanicError(recovered any) error {
	if err, ok := recovered.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", recovered)
}

// URLSet is a thread-safe set for tracking visited URLs.
type URLSet struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{seen: make(map[string]struct{})}
}

// Add returns true if the URL was newly added, false if already present.
func (s *URLSet) Add(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}
