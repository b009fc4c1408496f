package summaries

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DefaultGuidanceKeywords mark a guidance item as a strong positive signal.
var DefaultGuidanceKeywords = []string{
	"raised", "raise", "increased", "increase", "strong", "confidence", "confident",
	"improve", "improved", "growth", "upside", "robust", "reaffirmed", "momentum",
}

// Fixed explanations for each rule-based sentiment.
const (
	ExplanationNegative = "Sentiment classified as negative due to risk concentration materially outweighing positive operating discussion."
	ExplanationCautious = "Sentiment classified as cautious due to risk discussion outweighing positive highlights in management commentary."
	ExplanationPositive = "Sentiment classified as positive due to stronger operational highlights supported by forward guidance signals."
	ExplanationNeutral  = "Sentiment classified as neutral due to a balanced mix of opportunities and risks."
)

// Normalizer validates untrusted summary payloads and derives the
// rule-based sentiment.
type Normalizer struct {
	guidance *regexp.Regexp
}

// NewNormalizer creates a Normalizer that treats keywords as strong guidance
// signals. An empty list selects DefaultGuidanceKeywords.
func NewNormalizer(keywords []string) (*Normalizer, error) {
	if len(keywords) == 0 {
		keywords = DefaultGuidanceKeywords
	}

	quoted := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			quoted = append(quoted, regexp.QuoteMeta(k))
		}
	}
	if len(quoted) == 0 {
		return nil, fmt.Errorf("no guidance keywords")
	}

	re, err := regexp.Compile(`(?i)\b(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("compile guidance keywords: %w", err)
	}
	return &Normalizer{guidance: re}, nil
}

var defaultNormalizer = must(NewNormalizer(nil))

func must(n *Normalizer, err error) *Normalizer {
	if err != nil {
		panic(err)
	}
	return n
}

// Normalize validates payload with the default guidance keywords.
func Normalize(payload any) (Summary, error) {
	return defaultNormalizer.Normalize(payload)
}

// Normalize validates payload and returns the normalized summary.
// payload is a decoded JSON value or a Summary. Errors are *ValidationError.
func (n *Normalizer) Normalize(payload any) (Summary, error) {
	payload, err := decoded(payload)
	if err != nil {
		return Summary{}, err
	}

	if err := checkShape(payload); err != nil {
		return Summary{}, err
	}
	obj := payload.(map[string]any)

	var s Summary

	if s.Company, err = requiredString(obj, "company"); err != nil {
		return Summary{}, err
	}
	if s.Quarter, err = requiredString(obj, "quarter"); err != nil {
		return Summary{}, err
	}
	if s.FinancialSentiment, err = enum(obj, "financial_sentiment", sentiments); err != nil {
		return Summary{}, err
	}
	if s.ConfidenceLevel, err = enum(obj, "confidence_level", confidences); err != nil {
		return Summary{}, err
	}

	seen := make(map[string]struct{})
	lists := []struct {
		field string
		dst   *[]string
	}{
		{"key_highlights", &s.KeyHighlights},
		{"risks_and_concerns", &s.RisksAndConcerns},
		{"management_commitments", &s.ManagementCommitments},
		{"guidance_outlook", &s.GuidanceOutlook},
		{"analyst_focus_areas", &s.AnalystFocusAreas},
	}
	for _, l := range lists {
		*l.dst = dedupe(stringList(obj[l.field]), seen)
	}

	s.RuleBasedSentiment, s.SentimentExplanation = n.derive(s)
	return s, nil
}

// StrongGuidance reports whether any item matches a guidance keyword.
func (n *Normalizer) StrongGuidance(items []string) bool {
	return slices.ContainsFunc(items, n.guidance.MatchString)
}

func (n *Normalizer) derive(s Summary) (string, string) {
	h := len(s.KeyHighlights)
	r := len(s.RisksAndConcerns)

	switch {
	case r >= h+2:
		return SentimentNegative, ExplanationNegative
	case r > h:
		return SentimentCautious, ExplanationCautious
	case n.StrongGuidance(s.GuidanceOutlook):
		return SentimentPositive, ExplanationPositive
	default:
		return SentimentNeutral, ExplanationNeutral
	}
}

func decoded(payload any) (any, error) {
	switch payload.(type) {
	case Summary, *Summary:
	default:
		return payload, nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return v, nil
}

func requiredString(obj map[string]any, field string) (string, error) {
	s, _ := obj[field].(string)
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ValidationError{Field: field, Reason: field + " must be a non-empty string"}
	}
	return s, nil
}

func enum(obj map[string]any, field string, allowed []string) (string, error) {
	s, _ := obj[field].(string)
	s = strings.ToLower(strings.TrimSpace(s))
	if !slices.Contains(allowed, s) {
		return "", &ValidationError{
			Field:  field,
			Reason: fmt.Sprintf("%s must be one of %s", field, strings.Join(allowed, ", ")),
		}
	}
	return s, nil
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func dedupe(items []string, seen map[string]struct{}) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
