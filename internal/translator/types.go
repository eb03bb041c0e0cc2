// Package translator defines the translation capability consumed by the
// chunk orchestrator and its two backing implementations: an LLM
// chat-completion endpoint (the production path, metered) and Google Cloud
// Translate (unmetered). The orchestrator is agnostic to the backend; both
// follow the identical retry and validation path.
package translator

import "context"

// Request is one chunk translation request.
type Request struct {
	Text  string
	Final bool // last chunk of the document
}

// Usage is the metered token consumption of one request. Backends without
// token accounting return a nil Usage.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	Cost             float64
}

// Result is the raw output of one translation request, before
// normalization and validation.
type Result struct {
	Text  string
	Usage *Usage
}

// Translator performs one translation request against an external
// capability. Implementations classify failures with the ErrTransport and
// ErrMalformed sentinels so callers can retry on errors.Is.
type Translator interface {
	Name() string
	Translate(ctx context.Context, req Request) (*Result, error)
}
