package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is reported by tasks submitted after Shutdown
var ErrPoolClosed = errors.New("worker pool is closed")

// Task is the handle for one submitted job
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Wait blocks until the task finished and returns its error
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

// Done is closed when the task finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Name returns the label the task was submitted with
func (t *Task) Name() string {
	return t.name
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Completed returns an already-finished task
func Completed(name string, err error) *Task {
	t := &Task{name: name, done: make(chan struct{})}
	t.finish(err)
	return t
}

// Pool runs background jobs on a bounded number of goroutines.
// Jobs get the pool's context, not the submitter's, so they outlive request scopes.
type Pool struct {
	sem    chan struct{} // Concurrency semaphore
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewPool creates a pool running at most size jobs at once
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		sem:    make(chan struct{}, size),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Submit queues fn and returns immediately. A panic in fn is recovered and
// reported as the task's error.
func (p *Pool) Submit(name string, fn func(ctx context.Context) error) *Task {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return Completed(name, ErrPoolClosed)
	}
	p.wg.Add(1)
	p.mu.Unlock()

	task := &Task{name: name, done: make(chan struct{})}
	go func() {
		defer p.wg.Done()

		select {
		case p.sem <- struct{}{}:
		case <-p.ctx.Done():
			task.finish(p.ctx.Err())
			return
		}
		defer func() { <-p.sem }()

		task.finish(p.run(task.name, fn))
	}()
	return task
}

func (p *Pool) run(name string, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %s panicked: %v", name, r)
			log.Error().Str("task", name).Interface("panic", r).Msg("Background task panicked")
		}
	}()
	return fn(p.ctx)
}

// Wait blocks until every submitted task has finished
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown stops accepting work and waits for running tasks. When ctx expires
// first, the remaining tasks see their context cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		<-done
		return ctx.Err()
	}
}
