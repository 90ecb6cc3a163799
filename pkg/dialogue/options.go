package dialogue

import "log/slog"

// Option defines a functional option for configuring the Manager.
type Option func(*Manager)

// WithLogger sets a custom structured logger for the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithDefaultHandler sets the handler invoked when no rule matches.
// By default the fallback is a no-op that produces no client actions.
func WithDefaultHandler(handler HandlerFunc) Option {
	return func(m *Manager) {
		m.defaultHandler = handler
	}
}

// WithChooser sets the phrasing-selection function used by responders.
// Useful for deterministic tests.
func WithChooser(choose Chooser) Option {
	return func(m *Manager) {
		m.chooser = choose
	}
}

// WithObserver registers a dispatch outcome observer (e.g. metrics).
func WithObserver(obs Observer) Option {
	return func(m *Manager) {
		m.observer = obs
	}
}
