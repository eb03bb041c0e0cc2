// Package checkpoint persists accepted chunk translations as individual
// files so an interrupted document can resume without retranslating. The
// file name is derived deterministically from the document identity and
// the chunk sequence number; no separate index exists, the file namespace
// is the write-ahead log.
package checkpoint

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// sanitizeRe strips characters that are unsafe in file names on any
// supported platform.
var sanitizeRe = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]+`)

// Store holds chunk files for all documents under one working directory.
// Callers must ensure a single writer per (identity, seq) pair at a time;
// distinct pairs may be written concurrently.
type Store struct {
	dir string
}

// New creates the working directory if needed and returns the store.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create chunk directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the working directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName returns the deterministic chunk file name for a document
// identity and 1-based sequence number.
func FileName(identity string, seq int) string {
	return fmt.Sprintf("%s - Chunk_%06d.txt", sanitize(identity), seq)
}

// Path returns the absolute path of a chunk file.
func (s *Store) Path(identity string, seq int) string {
	return filepath.Join(s.dir, FileName(identity, seq))
}

// Load returns the persisted translation for a chunk. A missing or empty
// file is reported as not found, not as an error: an empty file means a
// crashed write and the chunk must be retranslated.
func (s *Store) Load(identity string, seq int) (string, bool, error) {
	data, err := os.ReadFile(s.Path(identity, seq))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", false, nil
	}
	return string(data), true, nil
}

// Save durably records an accepted chunk translation.
func (s *Store) Save(identity string, seq int, text string) error {
	if err := os.WriteFile(s.Path(identity, seq), []byte(text), 0o644); err != nil {
		return fmt.Errorf("persist chunk %d: %w", seq, err)
	}
	return nil
}

// Clear removes chunk files 1..n for a document. Called only after the
// final document write succeeded; missing files are not an error.
func (s *Store) Clear(identity string, n int) error {
	var firstErr error
	for seq := 1; seq <= n; seq++ {
		if err := os.Remove(s.Path(identity, seq)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// sanitize makes identity safe for use in a file name.
func sanitize(identity string) string {
	cleaned := sanitizeRe.ReplaceAllString(identity, "_")
	return strings.TrimSpace(cleaned)
}
