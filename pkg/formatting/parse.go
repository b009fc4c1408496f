package formatting

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrParseFailed is returned when content cannot be parsed as JSON,
// either directly or after the single truncation recovery attempt.
var ErrParseFailed = errors.New("failed to parse response")

// ParseError carries the original and fence-stripped content of a failed parse.
type ParseError struct {
	Raw     string
	Cleaned string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %v", ErrParseFailed, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParseFailed, e.Err}
}

// StripFences removes Markdown code-fence markers (```json and ```) wherever they
// appear and trims surrounding whitespace.
func StripFences(content string) string {
	content = strings.ReplaceAll(content, "```json", "")
	content = strings.ReplaceAll(content, "```", "")
	return strings.TrimSpace(content)
}

// Parse unmarshals content into T after stripping code fences. If that fails it
// truncates the cleaned content after its last closing brace and tries exactly
// once more. Failures return a *ParseError wrapping ErrParseFailed.
func Parse[T any](content string) (T, error) {
	return ParseWith[T](content, json.Unmarshal)
}

// ParseWith is Parse with a caller-supplied unmarshal function.
func ParseWith[T any](content string, unmarshal func([]byte, any) error) (T, error) {
	var result T
	cleaned := StripFences(content)

	err := unmarshal([]byte(cleaned), &result)
	if err == nil {
		return result, nil
	}

	if idx := strings.LastIndex(cleaned, "}"); idx != -1 {
		var recovered T
		rerr := unmarshal([]byte(cleaned[:idx+1]), &recovered)
		if rerr == nil {
			return recovered, nil
		}
		err = rerr
	}

	return result, &ParseError{Raw: content, Cleaned: cleaned, Err: err}
}
