package embedded

import (
	"time"

	"go.uber.org/zap"
)

// Option configures an Engine.
type Option func(*Engine)

// WithDataFile sets the snapshot file loaded on Open and written on Close.
func WithDataFile(path string) Option {
	return func(engine *Engine) {
		engine.dataFile = path
	}
}

// WithBackgroundSave writes a snapshot every interval while the engine is open.
func WithBackgroundSave(interval time.Duration) Option {
	return func(engine *Engine) {
		engine.saveInterval = interval
	}
}

// WithIndexedFields replaces the set of fields with a secondary index.
func WithIndexedFields(fields ...string) Option {
	return func(engine *Engine) {
		engine.indexedFields = fields
	}
}

// WithLogger sets the logger used by background workers.
func WithLogger(logger *zap.Logger) Option {
	return func(engine *Engine) {
		if logger != nil {
			engine.logger = logger
		}
	}
}
