package summaries

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/go-pdf/fpdf"
)

const (
	reportTitle  = "Concall Summary"
	reportAuthor = "Concall Intelligence Engine"
	emptySection = "Not explicitly mentioned."
)

// Section is a titled list of report items.
type Section struct {
	Title string
	Items []string
}

// Sections returns the report sections of rec in display order.
func Sections(rec Record) []Section {
	s := rec.Summary
	sentiment := s.RuleBasedSentiment
	if sentiment == "" {
		sentiment = s.FinancialSentiment
	}

	return []Section{
		{"1. Overall Sentiment", []string{
			fmt.Sprintf("%s (%s confidence)", sentiment, s.ConfidenceLevel),
			s.SentimentExplanation,
		}},
		{"2. Key Highlights", s.KeyHighlights},
		{"3. Risks & Concerns", s.RisksAndConcerns},
		{"4. Management Commitments", s.ManagementCommitments},
		{"5. Guidance / Outlook", s.GuidanceOutlook},
		{"6. Analyst Focus Areas", s.AnalystFocusAreas},
	}
}

// TruncationNote returns the report note for truncated transcripts, or "".
func TruncationNote(meta Meta) string {
	if !meta.WasTruncated {
		return ""
	}
	return fmt.Sprintf(
		"Note: Summary generated from the first %d characters of the transcript. Additional context may exist beyond this range.",
		meta.CleanedChars,
	)
}

var unsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// Filename returns the download filename for rec with the given extension.
func Filename(rec Record, ext string) string {
	company := rec.Summary.Company
	if company == "" {
		company = "company"
	}
	quarter := rec.Summary.Quarter
	if quarter == "" {
		quarter = "quarter"
	}
	return fmt.Sprintf("Concall_Summary_%s_%s.%s",
		unsafeFilename.ReplaceAllString(company, "_"),
		unsafeFilename.ReplaceAllString(quarter, "_"),
		ext,
	)
}

// RenderPDF renders rec as an A4 PDF report.
func RenderPDF(rec Record) ([]byte, error) {
	pdf := fpdf.New("P", "pt", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle(fmt.Sprintf("%s - %s", reportTitle, rec.Summary.Quarter), true)
	pdf.SetAuthor(reportAuthor, true)
	pdf.SetMargins(50, 50, 50)
	pdf.SetAutoPageBreak(true, 50)
	pdf.AddPage()

	text := func(style string, size float64, r, g, b int, s string) {
		pdf.SetFont("Helvetica", style, size)
		pdf.SetTextColor(r, g, b)
		pdf.MultiCell(0, size*1.3, tr(s), "", "L", false)
	}

	text("B", 18, 17, 24, 39, reportTitle)
	pdf.Ln(6)

	text("", 11, 17, 24, 39, "Company: "+rec.Summary.Company)
	text("", 11, 17, 24, 39, "Quarter: "+rec.Summary.Quarter)
	pdf.Ln(10)

	text("", 10, 55, 65, 81, rec.Summary.SentimentExplanation)

	if note := TruncationNote(rec.Meta); note != "" {
		pdf.Ln(10)
		text("I", 9.5, 75, 85, 99, note)
	}

	for _, sec := range Sections(rec) {
		pdf.Ln(10)
		text("B", 12, 17, 24, 39, sec.Title)
		pdf.Ln(3)

		if len(sec.Items) == 0 {
			text("", 10, 75, 85, 99, emptySection)
			continue
		}
		for _, item := range sec.Items {
			text("", 10, 17, 24, 39, "- "+item)
			pdf.Ln(3)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}
