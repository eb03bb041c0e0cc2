package postprocess

import (
	"strings"
	"testing"
)

func TestClean_RepetitionCollapse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "letters and bangs collapse to four",
			input:    "Helloooooo!!!!!!",
			expected: "Helloooo!!!!",
		},
		{
			name:     "periods are exempt",
			input:    "Wait........",
			expected: "Wait........",
		},
		{
			name:     "four repeats untouched",
			input:    "Soooo good!!!!",
			expected: "Soooo good!!!!",
		},
		{
			name:     "dashes collapse",
			input:    "a---------b",
			expected: "a----b",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean_RepetitionCollapseSpansRunes(t *testing.T) {
	// "Soooo" keeps 4 o's; o run of 5 here, only the o's collapse.
	got := Clean("nooooo way")
	if got != "noooo way" {
		t.Errorf("got %q", got)
	}
}

func TestRemoveThinkingBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "no blocks",
			input:    "A normal translation.",
			expected: "A normal translation.",
		},
		{
			name:     "thinking block",
			input:    "Before<thinking>let me consider</thinking>After",
			expected: "BeforeAfter",
		},
		{
			name:     "scratchpad block",
			input:    "Before<scratchpad>draft draft</scratchpad>After",
			expected: "BeforeAfter",
		},
		{
			name:     "multiline block",
			input:    "Start<think>\nline one\nline two\n</think>End",
			expected: "StartEnd",
		},
		{
			name:     "unterminated tag kept",
			input:    "Text <thinking>that never closes",
			expected: "Text that never closes",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// The unterminated tag itself is stripped as residual markup,
			// but the content after it must survive.
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean_TranslationLabels(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "leading echo phrase",
			input:    "Here is the translation: The rain stopped.",
			expected: "The rain stopped.",
		},
		{
			name:     "bracketed label line",
			input:    "[Translation]\nThe rain stopped.",
			expected: "The rain stopped.",
		},
		{
			name:     "dashed label line",
			input:    "--- English Translation ---\nThe rain stopped.",
			expected: "The rain stopped.",
		},
		{
			name:     "label mid-sentence kept",
			input:    "The translation of this poem is hard.",
			expected: "The translation of this poem is hard.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestClean_StripsTagsButKeepsCodeSpans(t *testing.T) {
	input := "Use `<br>` for a break. <b>Bold</b> text.\n```\n<div>kept</div>\n```"
	got := Clean(input)

	if !strings.Contains(got, "`<br>`") {
		t.Errorf("inline code span corrupted: %q", got)
	}
	if !strings.Contains(got, "<div>kept</div>") {
		t.Errorf("fenced code corrupted: %q", got)
	}
	if strings.Contains(got, "<b>") || strings.Contains(got, "</b>") {
		t.Errorf("tags outside code not stripped: %q", got)
	}
}

func TestCapBlankLines(t *testing.T) {
	got := CapBlankLines("a" + strings.Repeat("\n", 9) + "b")
	if got != "a\n\n\n\nb" {
		t.Errorf("expected capped run, got %q", got)
	}

	unchanged := "a\n\n\nb"
	if got := CapBlankLines(unchanged); got != unchanged {
		t.Errorf("short run modified: %q", got)
	}
}

func TestClean_TrimsResult(t *testing.T) {
	if got := Clean("  \n  text  \n  "); got != "text" {
		t.Errorf("expected trimmed %q, got %q", "text", got)
	}
}
