// Package worker defines the writer pool that drains accepted ballots
// into the store.
package worker

import (
	"github.com/okian/laurel/internal/domain/dedupe"
	"github.com/okian/laurel/pkg/logger"
)

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithDeduper lets the worker roll back the duplicate-detection mark when
// a ballot fails to persist, so the voter can retry.
func WithDeduper(d dedupe.Deduper) Option {
	return func(w *Worker) {
		w.deduper = d
	}
}
