package tracker

import "log/slog"

// Observer is notified of registry changes. Methods are called after the
// registry lock is released, on the goroutine that performed the operation.
type Observer interface {
	Added(r Registration)
	Removed(r Registration, op Op)
	Failed(op Op, err error)
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithLogger sets the logger. Default: slog.Default() with component=tracker.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithObserver adds an observer. It may be given more than once.
func WithObserver(o Observer) Option {
	return func(t *Tracker) {
		if o != nil {
			t.observers = append(t.observers, o)
		}
	}
}
