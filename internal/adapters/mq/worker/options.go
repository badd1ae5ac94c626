// Package worker persists match snapshots in the background.
package worker

import (
	"time"

	"github.com/okian/courtside/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce sets how long a worker holds a snapshot waiting for newer
// versions of the same match. Zero writes every job immediately.
func WithDebounce(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// PoolOption applies a configuration option to the Pool.
type PoolOption func(*Pool)

// WithPoolDebounce sets the debounce of every worker in the pool.
func WithPoolDebounce(d time.Duration) PoolOption {
	return func(p *Pool) {
		if d >= 0 {
			p.debounce = d
		}
	}
}

// WithPoolLogger sets the logger of the pool and its workers.
func WithPoolLogger(l logger.Logger) PoolOption {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}
