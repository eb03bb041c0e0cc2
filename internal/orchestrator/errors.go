package orchestrator

import "fmt"

// ChunkExhaustedError is the fatal error raised when one chunk fails every
// retry attempt. It carries enough context for the operator to locate the
// document and the failing chunk; the caller surfaces it as a
// process-terminating condition. A chunk is never silently skipped.
type ChunkExhaustedError struct {
	Chunk      int
	Attempts   int
	Title      string
	Author     string
	OutputPath string
	LastErr    error
}

func (e *ChunkExhaustedError) Error() string {
	return fmt.Sprintf("chunk %d of %q by %q failed after %d attempts (output %s): %v",
		e.Chunk, e.Title, e.Author, e.Attempts, e.OutputPath, e.LastErr)
}

func (e *ChunkExhaustedError) Unwrap() error {
	return e.LastErr
}
