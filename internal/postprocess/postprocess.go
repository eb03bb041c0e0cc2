// Package postprocess removes common LLM artifacts from raw translation
// output before validation: scratchpad blocks, boilerplate translation
// labels, residual markup, pathological character repetition, and runaway
// blank-line runs. Literal code spans survive cleanup verbatim.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/valpere/hantran/internal/placeholder"
)

// Clean removes LLM artifacts from text in five phases and returns the
// trimmed result:
//  1. Scratchpad / thinking block removal
//  2. Boilerplate translation-label removal
//  3. Residual markup stripping (code spans protected)
//  4. Character-repetition collapse
//  5. Blank-line run capping
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeTranslationLabels(text)
	text = stripMarkup(text)
	text = collapseRepeats(text)
	text = CapBlankLines(text)
	return strings.TrimSpace(text)
}

// --- Phase 1: scratchpad blocks ---

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences. Only matched pairs are removed; an unterminated
// opening tag is left alone rather than eating the rest of the output.
// Flags: i = case-insensitive, s = dot matches newline.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<scratchpad>.*?</scratchpad>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

func removeThinkingBlocks(text string) string {
	return strings.TrimSpace(thinkingBlockRe.ReplaceAllString(text, ""))
}

// --- Phase 2: translation labels ---

// labelLineRe matches a line that consists only of a translation-marker
// phrase, optionally wrapped in brackets or dashes ("[Translation]",
// "--- English Translation ---", "Translated text:").
var labelLineRe = regexp.MustCompile(
	`(?im)^[ \t\-–—=*\[\(]*(?:english[ \t]+)?(?:translation|translated[ \t]+text)[ \t\]\)\-–—=*:]*$[\r\n]*`,
)

// echoPatterns match introductory phrases that LLMs sometimes prepend even
// when instructed not to. Anchored to the start of the string and requiring
// a colon to reduce false positives on legitimate content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:english |translated )?(?:translation|text)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:english )?(?:translation|translated text)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:english |translated )?(?:translation|text)\s*:`),
}

func removeTranslationLabels(text string) string {
	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return labelLineRe.ReplaceAllString(text, "")
}

// --- Phase 3: residual markup ---

// htmlTagRe matches HTML/XML tags: opening, closing, and self-closing.
var htmlTagRe = regexp.MustCompile(`<[^>\n]+>`)

// stripMarkup removes residual HTML/XML tags. Code spans are pulled out
// before stripping and spliced back verbatim so a literal `<br>` inside
// backticks is never lost.
func stripMarkup(text string) string {
	protected, markers := placeholder.Protect(text)
	protected = htmlTagRe.ReplaceAllString(protected, "")
	return placeholder.Restore(protected, markers)
}

// --- Phase 4: character repetition ---

// maxRepeat is the longest run any rune outside repeatAllowed may keep.
const maxRepeat = 4

// repeatAllowed lists runes that may repeat without limit: spaces, periods
// (ellipses), paragraph delimiters, and parentheses.
func repeatAllowed(r rune) bool {
	switch r {
	case ' ', '.', '\n', '\r', '\v', '\f', '\u2028', '\u2029', '(', ')', '（', '）':
		return true
	}
	return false
}

// collapseRepeats truncates any run of 5 or more identical runes to 4,
// except for the allow-list above.
func collapseRepeats(text string) string {
	var b strings.Builder
	b.Grow(len(text))

	var prev rune = -1
	run := 0
	for _, r := range text {
		if r == prev {
			run++
		} else {
			prev, run = r, 1
		}
		if run > maxRepeat && !repeatAllowed(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// --- Phase 5: blank lines ---

var blankRunRe = regexp.MustCompile(`\n{5,}`)

// CapBlankLines collapses any run of five or more newlines down to four.
// It is also applied at chunk boundaries during reassembly.
func CapBlankLines(text string) string {
	return blankRunRe.ReplaceAllString(text, "\n\n\n\n")
}
