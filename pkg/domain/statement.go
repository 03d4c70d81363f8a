package domain

// Predicate is an equality filter between a document field and a named parameter.
type Predicate struct {
	Field string
	Param string
}

// Selection reads documents from the bucket. Each selected document is
// returned with its key injected as "id".
type Selection struct {
	// Alias names the keyspace inside the rendered statement.
	Alias string
	// KeysParam names the parameter holding the key, or list of keys, to read
	// directly. Keys that do not exist are skipped. Empty means a scan.
	KeysParam string
	// Where filters the selected documents.
	Where []Predicate
	// First keeps only the first selected document (or none).
	First bool
}

// Field is a named sub-selection of a composite statement.
type Field struct {
	Name      string
	Selection Selection
}

// Statement is a declarative read against one bucket. A statement either
// selects rows From one selection, or produces a single row whose Fields are
// the results of independent sub-selections.
type Statement struct {
	From   *Selection
	Fields []Field
	Params map[string]interface{}
}

// IsComposite reports whether the statement yields one row of named fields.
func (s Statement) IsComposite() bool {
	return len(s.Fields) > 0
}

// Keys returns the keys bound to a selection's KeysParam, in order.
func (s Statement) Keys(sel Selection) []string {
	switch v := s.Params[sel.KeysParam].(type) {
	case string:
		return []string{v}
	case []string:
		return v
	case []interface{}:
		keys := make([]string, 0, len(v))
		for _, item := range v {
			if key, ok := item.(string); ok {
				keys = append(keys, key)
			}
		}
		return keys
	default:
		return nil
	}
}
