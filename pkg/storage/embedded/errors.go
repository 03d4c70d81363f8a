package embedded

// Error is an engine failure carrying a stable code.
type Error struct {
	code    string
	message string
}

func (e *Error) Error() string { return e.message }

// Code returns the stable error code.
func (e *Error) Code() string { return e.code }

var (
	ErrDocumentExists   = &Error{"document_exists", "document already exists"}
	ErrPathMismatch     = &Error{"path_mismatch", "path does not hold an array"}
	ErrNoPrimaryIndex   = &Error{"no_primary_index", "no primary index on keyspace"}
	ErrMissingParameter = &Error{"missing_parameter", "statement parameter not bound"}
	ErrEmptyStatement   = &Error{"empty_statement", "statement selects nothing"}
)
