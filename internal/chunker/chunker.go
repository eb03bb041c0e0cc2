// Package chunker splits long source documents into translation-sized
// chunks without ever breaking a paragraph across two chunks. Chunks are
// numbered contiguously from 1 and the last chunk is flagged so downstream
// validation can exempt it from minimum-length checks.
package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxChars is the default per-chunk character budget.
const DefaultMaxChars = 11999

// Chunk is one paragraph-bounded slice of a source document.
type Chunk struct {
	Seq   int // 1-based, contiguous
	Text  string
	Final bool
}

// paragraphBreakRe matches a paragraph boundary: two or more
// paragraph-delimiting characters (newline, vertical tab, form feed,
// U+2028 LINE SEPARATOR, U+2029 PARAGRAPH SEPARATOR), possibly padded
// with horizontal whitespace, so "\r\n\r\n" and "\n \n" both qualify.
var paragraphBreakRe = regexp.MustCompile(`(?:[\n\v\f\x{2028}\x{2029}][ \t\r]*){2,}`)

// sentenceEndRuns collapse pathological runs of full-width sentence-ending
// marks ("！！！！！！") down to a single mark before split analysis. Each
// mark gets its own pattern because RE2 has no backreferences.
var sentenceEndRuns = []struct {
	re   *regexp.Regexp
	mark string
}{
	{regexp.MustCompile(`。{3,}`), "。"},
	{regexp.MustCompile(`！{3,}`), "！"},
	{regexp.MustCompile(`？{3,}`), "？"},
}

// Sentence-ending marks considered by the contextual splitter.
func isSentenceEnd(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

// Paragraph-opening glyphs that trigger a break after a sentence-ending
// mark. Deliberately only the full-width forms; ASCII quotes do not
// trigger a break.
func isParagraphOpener(r rune) bool {
	switch r {
	case '「', '『', '（', '《', '“', '‘':
		return true
	}
	return false
}

// Split divides text into an ordered chunk sequence bounded by maxChars
// unicode code points per chunk. Paragraphs are packed whole: a paragraph
// longer than maxChars is emitted alone in an oversized chunk rather than
// split. maxChars ≤ 0 is treated as unlimited. Empty or whitespace-only
// text yields no chunks.
func Split(text string, maxChars int) []Chunk {
	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = int(^uint(0) >> 1)
	}

	var chunks []Chunk
	var buf []string
	bufLen := 0

	flush := func() {
		if len(buf) == 0 {
			return
		}
		chunks = append(chunks, Chunk{
			Seq:  len(chunks) + 1,
			Text: strings.Join(buf, "\n\n"),
		})
		buf = nil
		bufLen = 0
	}

	for _, p := range paragraphs {
		pl := utf8.RuneCountInString(p)
		// Each buffered paragraph is followed by a two-character
		// "\n\n" separator when joined.
		if bufLen > 0 && bufLen+2+pl > maxChars {
			flush()
		}
		if bufLen > 0 {
			bufLen += 2
		}
		buf = append(buf, p)
		bufLen += pl
	}
	flush()

	chunks[len(chunks)-1].Final = true
	return chunks
}

// Paragraphs decomposes text into its ordered list of actual paragraphs:
// the text is split on paragraph-break runs, each piece is internally
// whitespace-normalized and stripped, empty pieces are dropped, and the
// contextual punctuation rule then splits dialogue-style paragraphs
// further (a full-width sentence-ending mark followed by a full-width
// opening glyph starts a new paragraph).
func Paragraphs(text string) []string {
	var out []string
	for _, raw := range paragraphBreakRe.Split(text, -1) {
		p := normalizeWhitespace(raw)
		if p == "" {
			continue
		}
		for _, run := range sentenceEndRuns {
			p = run.re.ReplaceAllString(p, run.mark)
		}
		out = append(out, splitAtContextualBreaks(p)...)
	}
	return out
}

// normalizeWhitespace collapses every internal whitespace run to a single
// space and trims the result.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// splitAtContextualBreaks splits p after a sentence-ending mark whenever
// the next non-space rune is a paragraph-opening glyph. Sentences not
// followed by an opener stay buffered together.
func splitAtContextualBreaks(p string) []string {
	runes := []rune(p)
	var parts []string
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isSentenceEnd(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		if j < len(runes) && isParagraphOpener(runes[j]) {
			part := strings.TrimSpace(string(runes[start : i+1]))
			if part != "" {
				parts = append(parts, part)
			}
			start = j
			i = j - 1
		}
	}

	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		parts = append(parts, tail)
	}
	return parts
}
