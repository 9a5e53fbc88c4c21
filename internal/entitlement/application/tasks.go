package application

import (
	"log/slog"
	"sync"
)

// TaskRegistry tracks detached background work items so teardown and tests
// can await quiescence instead of racing timers.
type TaskRegistry struct {
	logger *slog.Logger
	wg     sync.WaitGroup
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry(logger *slog.Logger) *TaskRegistry {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskRegistry{logger: logger}
}

// Go runs fn on its own goroutine and tracks it until completion. A panic in
// fn is logged, never propagated.
func (r *TaskRegistry) Go(name string, fn func()) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				r.logger.Error("background task panicked", "task", name, "panic", rec)
			}
		}()
		fn()
	}()
}

// Wait blocks until every tracked task has finished.
func (r *TaskRegistry) Wait() {
	r.wg.Wait()
}
