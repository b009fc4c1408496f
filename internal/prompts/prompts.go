// Package prompts composes the summarization prompt sent to the LLM provider.
// The prompt combines fixed analyst instructions, the JSON output format, and
// the cleaned transcript.
package prompts

import "strings"

// Instructions returns the analyst instructions.
func Instructions() string {
	return instructions
}

// Spec returns the output format specification.
func Spec() string {
	return spec
}

// Compose builds the full prompt for transcript.
func Compose(transcript string) string {
	var sb strings.Builder
	sb.WriteString(instructions)
	sb.WriteString("\n\n")
	sb.WriteString(spec)
	sb.WriteString("\n\nTranscript:\n\n")
	sb.WriteString(transcript)
	return sb.String()
}
