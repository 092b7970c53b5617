package ingest

import (
	"regexp"
	"strings"

	"techblog/internal/domain/content"
)

const wordsPerMinute = 200

var (
	fencedCodePattern = regexp.MustCompile("(?s)```.*?```")
	inlineCodePattern = regexp.MustCompile("`[^`]*`")
	imagePattern      = regexp.MustCompile(`!\[[^\]]*]\([^)]*\)`)
	linkPattern       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	rawTagPattern     = regexp.MustCompile(`<[^>]+>`)
	headingPattern    = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	quotePattern      = regexp.MustCompile(`(?m)^>\s+`)
	bulletPattern     = regexp.MustCompile(`(?m)^\s*[-+*]\s+`)
	numberedPattern   = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasisPattern   = regexp.MustCompile(`[*_~]`)
	spacePattern      = regexp.MustCompile(`\s+`)
)

// stripMarkdown approximates the prose of a markdown body. Replacement order
// is significant.
func stripMarkdown(body string) string {
	s := fencedCodePattern.ReplaceAllString(body, " ")
	s = inlineCodePattern.ReplaceAllString(s, " ")
	s = imagePattern.ReplaceAllString(s, " ")
	s = linkPattern.ReplaceAllString(s, "$1")
	s = rawTagPattern.ReplaceAllString(s, " ")
	s = headingPattern.ReplaceAllString(s, " ")
	s = quotePattern.ReplaceAllString(s, " ")
	s = bulletPattern.ReplaceAllString(s, " ")
	s = numberedPattern.ReplaceAllString(s, " ")
	s = emphasisPattern.ReplaceAllString(s, " ")
	s = spacePattern.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// CalculateStats derives word count and reading time from the stripped prose
// and structural counts from the untouched body.
func CalculateStats(body string) content.Stats {
	text := stripMarkdown(body)

	words := 0
	if text != "" {
		words = len(strings.Fields(text))
	}

	return content.Stats{
		WordCount:          words,
		ReadingTimeMinutes: ReadingTime(words),
		HeadingCount:       len(headingPattern.FindAllStringIndex(body, -1)),
		CodeBlockCount:     len(fencedCodePattern.FindAllStringIndex(body, -1)),
		ImageCount:         len(imagePattern.FindAllStringIndex(body, -1)),
	}
}

// ReadingTime is ceil(words/200), never below one minute for non-empty text.
func ReadingTime(words int) int {
	if words <= 0 {
		return 0
	}
	return max(1, (words+wordsPerMinute-1)/wordsPerMinute)
}
