// Package chunker splits document text into overlapping chunks for
// embedding. Splitting is recursive: paragraph breaks are preferred over
// line breaks, line breaks over spaces, and only as a last resort is text
// cut mid-word. Separators stay attached to their segment, so joining the
// chunks with the overlap prefixes removed reconstructs the input exactly.
package chunker

import "strings"

// Default chunking parameters, measured in runes.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// separators is the split preference order. The empty string means a hard
// cut at the budget boundary.
var separators = []string{"\n\n", "\n", " ", ""}

// Chunker splits text into chunks of at most Size runes where adjacent
// chunks share an Overlap-rune prefix/suffix.
type Chunker struct {
	size    int
	overlap int
}

// New constructs a Chunker. Non-positive size or overlap selects the
// defaults. An overlap that is not smaller than the size is clamped to a
// tenth of the size so chunking always makes progress.
func New(size, overlap int) *Chunker {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= size {
		overlap = size / 10
	}
	return &Chunker{size: size, overlap: overlap}
}

// Size returns the configured chunk size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the configured overlap in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split returns the chunks of text. Empty input yields no chunks; input
// no longer than the chunk size yields a single chunk equal to the input.
func (c *Chunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	if runeLen(text) <= c.size {
		return []string{text}
	}

	// Segments are capped at the payload budget so that prepending the
	// overlap never pushes a chunk past the configured size.
	budget := c.size - c.overlap
	payloads := packSegments(splitRecursive(text, budget, 0), budget)

	chunks := make([]string, 0, len(payloads))
	for i, payload := range payloads {
		if i == 0 {
			chunks = append(chunks, payload)
			continue
		}
		chunks = append(chunks, tailRunes(chunks[i-1], c.overlap)+payload)
	}
	return chunks
}

// splitRecursive cuts text into segments of at most budget runes, trying
// each separator in order. Concatenating the segments yields text.
func splitRecursive(text string, budget, sepIdx int) []string {
	if runeLen(text) <= budget {
		return []string{text}
	}
	if sepIdx >= len(separators) || separators[sepIdx] == "" {
		return hardSplit(text, budget)
	}

	parts := strings.SplitAfter(text, separators[sepIdx])
	if len(parts) == 1 {
		return splitRecursive(text, budget, sepIdx+1)
	}

	var segments []string
	for _, part := range parts {
		if part == "" {
			continue
		}
		if runeLen(part) <= budget {
			segments = append(segments, part)
			continue
		}
		segments = append(segments, splitRecursive(part, budget, sepIdx+1)...)
	}
	return segments
}

// packSegments greedily merges adjacent segments without exceeding budget.
func packSegments(segments []string, budget int) []string {
	var packed []string
	var current strings.Builder
	currentLen := 0

	for _, seg := range segments {
		segLen := runeLen(seg)
		if currentLen > 0 && currentLen+segLen > budget {
			packed = append(packed, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(seg)
		currentLen += segLen
	}
	if currentLen > 0 {
		packed = append(packed, current.String())
	}
	return packed
}

// hardSplit cuts text into budget-rune pieces at rune boundaries.
func hardSplit(text string, budget int) []string {
	runes := []rune(text)
	var pieces []string
	for len(runes) > budget {
		pieces = append(pieces, string(runes[:budget]))
		runes = runes[budget:]
	}
	if len(runes) > 0 {
		pieces = append(pieces, string(runes))
	}
	return pieces
}

// tailRunes returns the last n runes of s, or all of s when shorter.
func tailRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// runeLen returns the length of s in runes.
func runeLen(s string) int {
	return len([]rune(s))
}
