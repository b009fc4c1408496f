// Package textclean normalizes raw transcript text before it is sent to a language model.
// It removes page-number lines and repeated page furniture (headers, footers),
// collapses whitespace, and truncates to a character budget at a sentence boundary.
package textclean

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxChars is the character budget used when Clean receives a non-positive maxChars.
	DefaultMaxChars = 20000

	// RepeatedLineMaxLen is the longest line considered page furniture when repeated.
	RepeatedLineMaxLen = 90
	// RepeatedLineMinCount is how many times a short line must appear to be dropped.
	RepeatedLineMinCount = 3
	// BoundaryWindow is how far back from the hard cut the truncator looks for a sentence end.
	BoundaryWindow = 600
)

var (
	pageNumberPattern = regexp.MustCompile(`(?i)^(page\s*)?\d{1,4}(\s*/\s*\d{1,4})?$`)
	tabsPattern       = regexp.MustCompile(`\t+`)
	boundaries        = []string{". ", "! ", "? ", "\n"}
)

// Result is the cleaned text along with character accounting.
// All counts are in characters (runes), not bytes.
type Result struct {
	Text          string `json:"cleaned_text"`
	OriginalChars int    `json:"original_chars"`
	CleanedChars  int    `json:"cleaned_chars"`
	MaxChars      int    `json:"max_chars"`
	Truncated     bool   `json:"truncated"`
}

// Clean strips page numbers and repeated short lines from raw, joins the remaining
// lines into a single whitespace-collapsed string, and truncates it to maxChars.
func Clean(raw string, maxChars int) Result {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}

	lines := splitLines(raw)
	repeated := repeatedShortLines(lines)

	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if IsPageNumber(line) {
			continue
		}
		if _, ok := repeated[strings.ToLower(line)]; ok {
			continue
		}
		kept = append(kept, line)
	}

	collapsed := CollapseWhitespace(strings.Join(kept, " "))
	text, truncated := Truncate(collapsed, maxChars)

	return Result{
		Text:          text,
		OriginalChars: utf8.RuneCountInString(raw),
		CleanedChars:  utf8.RuneCountInString(text),
		MaxChars:      maxChars,
		Truncated:     truncated,
	}
}

// IsPageNumber reports whether line is a bare page marker such as "12", "Page 3" or "4 / 20".
func IsPageNumber(line string) bool {
	return pageNumberPattern.MatchString(strings.TrimSpace(line))
}

// CollapseWhitespace replaces every whitespace run with a single space and trims the ends.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate returns text unchanged when it fits within maxChars. Otherwise it hard-cuts
// at maxChars and backs up to the latest sentence boundary found in the final
// BoundaryWindow characters of the cut, if any.
func Truncate(text string, maxChars int) (string, bool) {
	if utf8.RuneCountInString(text) <= maxChars {
		return text, false
	}

	runes := []rune(text)
	hard := runes[:maxChars]

	start := max(0, len(hard)-BoundaryWindow)
	window := string(hard[start:])

	boundary := -1
	for _, b := range boundaries {
		if idx := strings.LastIndex(window, b); idx != -1 {
			boundary = max(boundary, utf8.RuneCountInString(window[:idx]))
		}
	}

	if boundary > 0 {
		cut := start + boundary + 1
		return strings.TrimSpace(string(hard[:cut])), true
	}

	return strings.TrimSpace(string(hard)), true
}

func splitLines(raw string) []string {
	parts := strings.Split(raw, "\n")
	lines := make([]string, len(parts))
	for i, p := range parts {
		p = strings.TrimSuffix(p, "\r")
		p = tabsPattern.ReplaceAllString(p, " ")
		lines[i] = strings.TrimSpace(p)
	}
	return lines
}

func repeatedShortLines(lines []string) map[string]struct{} {
	counts := make(map[string]int)
	for _, line := range lines {
		if line == "" || utf8.RuneCountInString(line) > RepeatedLineMaxLen {
			continue
		}
		counts[strings.ToLower(line)]++
	}

	repeated := make(map[string]struct{})
	for line, n := range counts {
		if n >= RepeatedLineMinCount {
			repeated[line] = struct{}{}
		}
	}
	return repeated
}
