package embedded

import (
	"sort"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Index maps the string values of one field to the keys of the documents
// holding them. Non-string values are not indexed.
type Index struct {
	Field    string
	Inverted map[string]map[string]struct{}
}

// NewIndex creates an empty index on field.
func NewIndex(field string) *Index {
	return &Index{
		Field:    field,
		Inverted: make(map[string]map[string]struct{}),
	}
}

// Query returns the keys whose field equals value, sorted.
func (idx *Index) Query(value string) []string {
	keys := make([]string, 0, len(idx.Inverted[value]))
	for key := range idx.Inverted[value] {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Update moves key from its old value to its new value. A nil document
// means the key did not exist before, or no longer exists.
func (idx *Index) Update(key string, oldDoc, newDoc domain.Document) {
	if oldVal, ok := oldDoc[idx.Field].(string); ok {
		if set := idx.Inverted[oldVal]; set != nil {
			delete(set, key)
			if len(set) == 0 {
				delete(idx.Inverted, oldVal)
			}
		}
	}
	if newVal, ok := newDoc[idx.Field].(string); ok {
		set := idx.Inverted[newVal]
		if set == nil {
			set = make(map[string]struct{})
			idx.Inverted[newVal] = set
		}
		set[key] = struct{}{}
	}
}

// Reset drops every entry.
func (idx *Index) Reset() {
	idx.Inverted = make(map[string]map[string]struct{})
}

// updateIndexes applies a document change to every index. Callers hold e.mu.
func (e *Engine) updateIndexes(key string, oldDoc, newDoc domain.Document) {
	for _, idx := range e.indexes {
		idx.Update(key, oldDoc, newDoc)
	}
}

// rebuildIndexes re-derives every index from the stored documents. Callers
// hold e.mu.
func (e *Engine) rebuildIndexes() error {
	for _, idx := range e.indexes {
		idx.Reset()
	}
	for key, payload := range e.docs {
		doc, err := decode(payload)
		if err != nil {
			return err
		}
		e.updateIndexes(key, nil, doc)
	}
	return nil
}

// candidates picks the smallest index-backed key set able to answer the
// predicates. It reports false when no predicate hits an index.
func (e *Engine) candidates(where []domain.Predicate, params map[string]interface{}) ([]string, bool) {
	var best []string
	found := false
	for _, p := range where {
		idx, ok := e.indexes[p.Field]
		if !ok {
			continue
		}
		value, ok := params[p.Param].(string)
		if !ok {
			continue
		}
		keys := idx.Query(value)
		if !found || len(keys) < len(best) {
			best = keys
			found = true
		}
	}
	return best, found
}
