package validator_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/valpere/hantran/internal/validator"
)

// englishText returns an all-English text of at least n runes.
func englishText(n int) string {
	s := "The quick brown fox jumps over the lazy dog. "
	return strings.Repeat(s, n/len(s)+1)
}

func TestValidate_RejectsChineseResidue(t *testing.T) {
	v := validator.New()
	err := v.Validate("这是一段中文", false)
	if err == nil {
		t.Fatal("expected rejection for untranslated Chinese text")
	}
	var rej *validator.RejectionError
	if !errors.As(err, &rej) {
		t.Fatalf("expected *RejectionError, got %T", err)
	}
}

func TestValidate_AcceptsEnglish(t *testing.T) {
	v := validator.New()
	if err := v.Validate(englishText(300), false); err != nil {
		t.Errorf("expected acceptance, got %v", err)
	}
}

func TestValidate_RatioThreshold(t *testing.T) {
	v := validator.New()

	// 3 foreign runes against 100 Latin: ratio 0.03, not above threshold.
	ok := strings.Repeat("a", 100) + "中文字"
	if err := v.Validate(ok, true); err != nil {
		t.Errorf("ratio at threshold should pass, got %v", err)
	}

	// 4 foreign runes against 100 Latin: ratio 0.04, rejected.
	bad := strings.Repeat("a", 100) + "中文字符"
	if err := v.Validate(bad, true); err == nil {
		t.Error("ratio above threshold should be rejected")
	}
}

func TestValidate_WhitespaceIgnored(t *testing.T) {
	v := validator.New()
	// Whitespace must not count toward either side of the ratio.
	text := englishText(300) + strings.Repeat(" \n\t", 50)
	if err := v.Validate(text, false); err != nil {
		t.Errorf("expected acceptance, got %v", err)
	}
}

func TestValidate_MinimumLength(t *testing.T) {
	v := validator.New()

	if err := v.Validate("Too short.", false); err == nil {
		t.Error("short non-final chunk should be rejected")
	}

	// The final chunk may legitimately be short.
	if err := v.Validate("Too short.", true); err != nil {
		t.Errorf("short final chunk should pass, got %v", err)
	}
}

func TestValidate_OverriddenThresholds(t *testing.T) {
	v := validator.New()
	v.MinChunkLength = 5
	if err := v.Validate("Hello there", false); err != nil {
		t.Errorf("expected acceptance with lowered minimum, got %v", err)
	}

	v.LatinRatioThreshold = 1.0
	if err := v.Validate("中文 and English half and half", false); err != nil {
		t.Errorf("expected acceptance with raised ratio, got %v", err)
	}
}
