package embedded

import (
	"fmt"
	"sort"

	"github.com/adfharrison1/docgate/pkg/domain"
)

// Execute evaluates a composed statement against a consistent view of the
// bucket. Keyed selections work without the primary index; scans need it.
func (e *Engine) Execute(stmt domain.Statement) ([]domain.Document, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if stmt.IsComposite() {
		row := domain.Document{}
		for _, field := range stmt.Fields {
			docs, err := e.selectLocked(stmt, field.Selection)
			if err != nil {
				return nil, err
			}
			if field.Selection.First {
				// An unresolved single selection is left out of the row.
				if len(docs) > 0 {
					row[field.Name] = docs[0]
				}
				continue
			}
			row[field.Name] = docs
		}
		return []domain.Document{row}, nil
	}

	if stmt.From == nil {
		return nil, ErrEmptyStatement
	}
	docs, err := e.selectLocked(stmt, *stmt.From)
	if err != nil {
		return nil, err
	}
	if stmt.From.First && len(docs) > 1 {
		docs = docs[:1]
	}
	return docs, nil
}

// selectLocked runs one selection. Callers hold e.mu.
func (e *Engine) selectLocked(stmt domain.Statement, sel domain.Selection) ([]domain.Document, error) {
	for _, p := range sel.Where {
		if _, ok := stmt.Params[p.Param]; !ok {
			return nil, fmt.Errorf("%w: $%s", ErrMissingParameter, p.Param)
		}
	}

	var keys []string
	if sel.KeysParam != "" {
		if _, ok := stmt.Params[sel.KeysParam]; !ok {
			return nil, fmt.Errorf("%w: $%s", ErrMissingParameter, sel.KeysParam)
		}
		keys = stmt.Keys(sel)
	} else {
		if !e.primaryIndex {
			return nil, fmt.Errorf("%w %s", ErrNoPrimaryIndex, e.bucket)
		}
		var indexed bool
		keys, indexed = e.candidates(sel.Where, stmt.Params)
		if !indexed {
			keys = make([]string, 0, len(e.docs))
			for key := range e.docs {
				keys = append(keys, key)
			}
			sort.Strings(keys)
		}
	}

	docs := make([]domain.Document, 0, len(keys))
	for _, key := range keys {
		payload, exists := e.docs[key]
		if !exists {
			continue
		}
		doc, err := decode(payload)
		if err != nil {
			return nil, err
		}
		if !MatchesPredicates(doc, sel.Where, stmt.Params) {
			continue
		}
		doc[domain.FieldID] = key
		docs = append(docs, doc)
		if sel.First {
			break
		}
	}
	return docs, nil
}
