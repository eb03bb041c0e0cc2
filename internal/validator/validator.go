// Package validator decides whether a cleaned translation chunk is
// acceptable English output or must be retried.
package validator

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultLatinRatioThreshold is the maximum tolerated ratio of
	// non-Latin characters to Latin/ASCII characters. Above it the chunk
	// is presumed to contain untranslated source text.
	DefaultLatinRatioThreshold = 0.03

	// DefaultMinChunkLength is the minimum rune count for a non-final
	// chunk. Shorter outputs are presumed truncated or failed
	// generations; the final chunk of a document may legitimately be
	// short and is exempt.
	DefaultMinChunkLength = 300
)

// RejectionError reports why a chunk failed validation. Rejections are
// retryable: the orchestrator treats them like any other transient failure.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return "translation rejected: " + e.Reason
}

// Validator holds the acceptance thresholds. The zero value is not useful;
// construct with New and override fields as needed.
type Validator struct {
	LatinRatioThreshold float64
	MinChunkLength      int
}

// New returns a Validator with the documented defaults.
func New() *Validator {
	return &Validator{
		LatinRatioThreshold: DefaultLatinRatioThreshold,
		MinChunkLength:      DefaultMinChunkLength,
	}
}

// Validate returns nil when text is acceptable, or a *RejectionError
// naming the failed heuristic. final marks the document's last chunk,
// which is exempt from the minimum-length rule.
func (v *Validator) Validate(text string, final bool) error {
	latin, foreign := countScripts(text)

	if foreign > 0 {
		if latin == 0 {
			return &RejectionError{Reason: "no Latin-script content"}
		}
		if ratio := float64(foreign) / float64(latin); ratio > v.LatinRatioThreshold {
			return &RejectionError{
				Reason: fmt.Sprintf("non-Latin ratio %.4f exceeds %.4f (%d of %d characters)",
					ratio, v.LatinRatioThreshold, foreign, latin+foreign),
			}
		}
	}

	if n := utf8.RuneCountInString(text); !final && n < v.MinChunkLength {
		return &RejectionError{
			Reason: fmt.Sprintf("length %d below minimum %d", n, v.MinChunkLength),
		}
	}

	return nil
}

// countScripts classifies every non-whitespace rune as Latin-script-or-ASCII
// (letters, digits, punctuation) or foreign.
func countScripts(text string) (latin, foreign int) {
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		if r <= unicode.MaxASCII || unicode.Is(unicode.Latin, r) {
			latin++
		} else {
			foreign++
		}
	}
	return latin, foreign
}
