// Package embedded implements the document backend in process. It keeps one
// bucket of msgpack-encoded documents in memory, persists it as a compressed
// snapshot and evaluates composed statements directly.
package embedded

import (
	"fmt"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Engine holds one bucket of documents.
type Engine struct {
	mu           sync.RWMutex
	bucket       string
	docs         map[string][]byte // key -> msgpack payload
	indexes      map[string]*Index // field -> index
	primaryIndex bool
	dirty        bool
	version      uint64 // bumped on every mutation
	opened       bool

	// Configuration
	dataFile      string
	saveInterval  time.Duration
	indexedFields []string
	logger        *zap.Logger

	// Background workers
	backgroundWg sync.WaitGroup
	stopChan     chan struct{}
}

// NewEngine creates an empty engine for the named bucket.
func NewEngine(bucket string, options ...Option) *Engine {
	engine := &Engine{
		bucket:        bucket,
		docs:          make(map[string][]byte),
		indexes:       make(map[string]*Index),
		indexedFields: []string{domain.FieldType},
		logger:        zap.NewNop(),
	}

	for _, option := range options {
		option(engine)
	}

	for _, field := range engine.indexedFields {
		engine.indexes[field] = NewIndex(field)
	}
	return engine
}

// Open loads the snapshot file, if any, and starts background saves. Calling
// Open on an opened engine is a no-op.
func (e *Engine) Open() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.opened {
		return nil
	}
	if e.dataFile != "" {
		if err := e.loadLocked(e.dataFile); err != nil {
			return err
		}
	}
	e.stopChan = make(chan struct{})
	e.startBackgroundWorkers()
	e.opened = true
	return nil
}

// Close stops background saves and writes a final snapshot.
func (e *Engine) Close() error {
	e.mu.Lock()
	if !e.opened {
		e.mu.Unlock()
		return nil
	}
	e.opened = false
	stop := e.stopChan
	e.mu.Unlock()

	close(stop)
	e.backgroundWg.Wait()

	if e.dataFile == "" {
		return nil
	}
	return e.SaveToFile(e.dataFile)
}

// Insert stores doc under id. It fails with ErrDocumentExists when id is taken.
func (e *Engine) Insert(id string, doc domain.Document) error {
	payload, err := encode(doc.Payload())
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.docs[id]; exists {
		return fmt.Errorf("%w: %s", ErrDocumentExists, id)
	}

	decoded, err := decode(payload)
	if err != nil {
		return err
	}
	e.updateIndexes(id, nil, decoded)
	e.docs[id] = payload
	e.markDirtyLocked()
	return nil
}

// Get returns a decoded copy of the payload stored under id.
func (e *Engine) Get(id string) (domain.Document, error) {
	e.mu.RLock()
	payload, exists := e.docs[id]
	e.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return decode(payload)
}

// ArrayAppend appends value to the array at path, creating it when absent.
// The read-modify-write runs under the engine lock, so concurrent appends
// to the same document are never lost.
func (e *Engine) ArrayAppend(id, path string, value interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	payload, exists := e.docs[id]
	if !exists {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	doc, err := decode(payload)
	if err != nil {
		return err
	}

	var list []interface{}
	if current, ok := doc[path]; ok && current != nil {
		list, ok = current.([]interface{})
		if !ok {
			return fmt.Errorf("%w: %s", ErrPathMismatch, path)
		}
	}

	updated := doc.Clone()
	updated[path] = append(list, value)
	newPayload, err := encode(updated)
	if err != nil {
		return err
	}
	decoded, err := decode(newPayload)
	if err != nil {
		return err
	}

	e.updateIndexes(id, doc, decoded)
	e.docs[id] = newPayload
	e.markDirtyLocked()
	return nil
}

// LookupArray returns the array stored at path.
func (e *Engine) LookupArray(id, path string) ([]interface{}, error) {
	doc, err := e.Get(id)
	if err != nil {
		return nil, err
	}
	value, ok := doc[path]
	if !ok {
		return nil, fmt.Errorf("path %s in document %s: %w", path, id, domain.ErrNotFound)
	}
	list, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPathMismatch, path)
	}
	return list, nil
}

// CreatePrimaryIndex enables scans over the bucket. It reports whether the
// index was newly created.
func (e *Engine) CreatePrimaryIndex() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.primaryIndex {
		return false
	}
	e.primaryIndex = true
	e.markDirtyLocked()
	return true
}

// markDirtyLocked records a mutation. Callers hold e.mu.
func (e *Engine) markDirtyLocked() {
	e.dirty = true
	e.version++
}

// HasPrimaryIndex reports whether scans are possible.
func (e *Engine) HasPrimaryIndex() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.primaryIndex
}

// Len returns the number of stored documents.
func (e *Engine) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.docs)
}

func encode(doc domain.Document) ([]byte, error) {
	data, err := msgpack.Marshal(map[string]interface{}(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return data, nil
}

func decode(data []byte) (domain.Document, error) {
	var doc map[string]interface{}
	if err := msgpack.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	if doc == nil {
		doc = make(map[string]interface{})
	}
	return domain.Document(doc), nil
}
