package embedded

import (
	"time"

	"go.uber.org/zap"
)

// Stats reports the engine state.
func (e *Engine) Stats() map[string]interface{} {
	e.mu.RLock()
	defer e.mu.RUnlock()

	indexed := make(map[string]int, len(e.indexes))
	for field, idx := range e.indexes {
		indexed[field] = len(idx.Inverted)
	}
	return map[string]interface{}{
		"bucket":        e.bucket,
		"documents":     len(e.docs),
		"primary_index": e.primaryIndex,
		"dirty":         e.dirty,
		"indexes":       indexed,
	}
}

// startBackgroundWorkers starts the periodic snapshot writer. Callers hold e.mu.
func (e *Engine) startBackgroundWorkers() {
	if e.saveInterval <= 0 || e.dataFile == "" {
		return
	}

	stop := e.stopChan
	e.backgroundWg.Add(1)
	go func() {
		defer e.backgroundWg.Done()
		ticker := time.NewTicker(e.saveInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				e.saveIfDirty()
			case <-stop:
				return
			}
		}
	}()
}

func (e *Engine) saveIfDirty() {
	e.mu.RLock()
	dirty := e.dirty
	e.mu.RUnlock()
	if !dirty {
		return
	}
	if err := e.SaveToFile(e.dataFile); err != nil {
		e.logger.Error("Background save failed", zap.String("bucket", e.bucket), zap.Error(err))
	}
}
