package domain

// Document represents a document in the store. The document key is carried
// in the "id" field on reads and is never part of the stored payload.
type Document map[string]interface{}

// Reserved document fields.
const (
	FieldID   = "id"
	FieldType = "type"
)

// Document type discriminators.
const (
	TypeCustomer = "customer"
	TypeProduct  = "product"
	TypeReceipt  = "receipt"
)

// Sub-document fields used by the gateway.
const (
	FieldCreditCards = "creditcards"
	FieldCustomer    = "customer"
	FieldProducts    = "products"
)

// ID returns the document key, or "" when it has not been injected.
func (d Document) ID() string {
	id, _ := d[FieldID].(string)
	return id
}

// Type returns the type discriminator of the document.
func (d Document) Type() string {
	t, _ := d[FieldType].(string)
	return t
}

// Clone returns a shallow copy of the document.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// WithID returns a copy of the document with the key injected.
func (d Document) WithID(id string) Document {
	out := d.Clone()
	out[FieldID] = id
	return out
}

// Payload returns a copy of the document without the injected key.
func (d Document) Payload() Document {
	out := d.Clone()
	delete(out, FieldID)
	return out
}

// AsDocument converts a decoded value (a JSON or msgpack object) into a
// Document. It reports false for nil and for non-object values.
func AsDocument(v interface{}) (Document, bool) {
	switch m := v.(type) {
	case Document:
		return m, m != nil
	case map[string]interface{}:
		return Document(m), m != nil
	default:
		return nil, false
	}
}

// AsDocuments converts a decoded array of objects into documents, skipping
// elements that are not objects.
func AsDocuments(v interface{}) []Document {
	switch list := v.(type) {
	case []Document:
		return list
	case []map[string]interface{}:
		out := make([]Document, 0, len(list))
		for _, m := range list {
			out = append(out, Document(m))
		}
		return out
	case []interface{}:
		out := make([]Document, 0, len(list))
		for _, item := range list {
			if doc, ok := AsDocument(item); ok {
				out = append(out, doc)
			}
		}
		return out
	default:
		return []Document{}
	}
}
