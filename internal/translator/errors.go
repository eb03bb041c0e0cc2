package translator

import "errors"

// Sentinel errors for translation request failures. Backends wrap these
// with fmt.Errorf("...: %w", sentinel); callers classify with errors.Is.
// Both classes are transient and retried by the orchestrator.
var (
	// ErrTransport indicates the translation service was unreachable or
	// the protocol exchange failed.
	ErrTransport = errors.New("translator transport failure")

	// ErrMalformed indicates the service responded but expected fields
	// were absent or empty.
	ErrMalformed = errors.New("malformed translator response")
)
