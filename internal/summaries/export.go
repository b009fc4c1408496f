package summaries

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Summary"

// RenderXLSX renders rec as a single-sheet workbook with the same sections
// as the PDF report.
func RenderXLSX(rec Record) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	index, err := f.GetSheetIndex(exportSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRender, err)
	}
	f.SetActiveSheet(index)

	row := 1
	write := func(col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(exportSheet, cell, v)
	}

	pairs := [][2]string{
		{"Title", reportTitle},
		{"Company", rec.Summary.Company},
		{"Quarter", rec.Summary.Quarter},
		{"Financial Sentiment", rec.Summary.FinancialSentiment},
		{"Rule-Based Sentiment", rec.Summary.RuleBasedSentiment},
		{"Confidence", rec.Summary.ConfidenceLevel},
		{"Explanation", rec.Summary.SentimentExplanation},
	}
	for _, p := range pairs {
		write(1, p[0])
		write(2, p[1])
		row++
	}

	if note := TruncationNote(rec.Meta); note != "" {
		write(1, "Note")
		write(2, note)
		row++
	}

	for _, sec := range Sections(rec) {
		row++
		write(1, sec.Title)
		row++

		if len(sec.Items) == 0 {
			write(2, emptySection)
			row++
			continue
		}
		for _, item := range sec.Items {
			write(2, item)
			row++
		}
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 28)
	_ = f.SetColWidth(exportSheet, "B", "B", 100)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("%w: xlsx write: %w", ErrRender, err)
	}
	return buf.Bytes(), nil
}
