package summaries

import (
	"time"

	"github.com/google/uuid"
)

// Sentiment labels shared by financial_sentiment and rule_based_sentiment.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentCautious = "cautious"
	SentimentNegative = "negative"
)

// Confidence labels.
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"
)

var (
	sentiments  = []string{SentimentPositive, SentimentNeutral, SentimentCautious, SentimentNegative}
	confidences = []string{ConfidenceHigh, ConfidenceMedium, ConfidenceLow}
)

// Summary is a validated, deduplicated earnings-call summary.
type Summary struct {
	Company               string   `json:"company"`
	Quarter               string   `json:"quarter"`
	FinancialSentiment    string   `json:"financial_sentiment"`
	ConfidenceLevel       string   `json:"confidence_level"`
	KeyHighlights         []string `json:"key_highlights"`
	RisksAndConcerns      []string `json:"risks_and_concerns"`
	ManagementCommitments []string `json:"management_commitments"`
	GuidanceOutlook       []string `json:"guidance_outlook"`
	AnalystFocusAreas     []string `json:"analyst_focus_areas"`
	RuleBasedSentiment    string   `json:"rule_based_sentiment"`
	SentimentExplanation  string   `json:"sentiment_explanation"`
}

// Meta describes how a summary was produced.
type Meta struct {
	RequestID         string    `json:"request_id"`
	SummaryID         uuid.UUID `json:"summary_id"`
	OriginalChars     int       `json:"original_chars"`
	CleanedChars      int       `json:"cleaned_chars"`
	MaxChars          int       `json:"max_chars"`
	WasTruncated      bool      `json:"was_truncated"`
	ExtractionMethod  string    `json:"extraction_method"`
	OCRPagesProcessed int       `json:"ocr_pages_processed"`
	PageCount         int       `json:"page_count,omitempty"`
}

// Record is a stored summary. Records are immutable once saved.
type Record struct {
	ID        uuid.UUID `json:"id"`
	Summary   Summary   `json:"summary"`
	Meta      Meta      `json:"meta"`
	CreatedAt time.Time `json:"created_at"`
}
