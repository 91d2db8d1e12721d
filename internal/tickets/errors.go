package tickets

import "errors"

var (
	// ErrNotFound — no ticket row matches the requested id.
	ErrNotFound = errors.New("ticket no encontrado")

	// ErrInconsistent — the row says processed but category or sentiment is
	// missing.
	ErrInconsistent = errors.New("ticket procesado sin clasificacion")
)

// StoreError wraps a Supabase read or write failure. Op is "select" or
// "update".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "supabase " + e.Op + " failed: " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
