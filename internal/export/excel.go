// Package export renders a user's resume analyses as an Excel workbook.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/muhammadolammi/resumereview/internal/analysis"
	"github.com/muhammadolammi/resumereview/internal/resumes"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet  = "Summary"
	AnalysesSheet = "Analyses"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var analysesHeader = []string{
	"File Name", "Analyzed At", "Fit Rating", "Risk", "Reward",
	"Strengths", "Weaknesses", "Justification",
}

// WriteReport writes the workbook for list to w. Only analyzed resumes get a
// row on the Analyses sheet; the summary counts every status.
func WriteReport(w io.Writer, list []resumes.Resume, generated time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(AnalysesSheet); err != nil {
		return err
	}

	if err := createSummarySheet(f, list, generated); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createAnalysesSheet(f, list); err != nil {
		return fmt.Errorf("failed to create analyses sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
}

func createSummarySheet(f *excelize.File, list []resumes.Resume, generated time.Time) error {
	sheet := SummarySheet
	f.SetColWidth(sheet, "A", "A", 25)
	f.SetColWidth(sheet, "B", "B", 30)

	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	counts := map[string]int{}
	for _, r := range list {
		counts[r.Status]++
	}

	rows := [][]any{
		{"Resume Analysis Report"},
		{},
		{"Generated:", generated.Format("2006-01-02 15:04:05")},
		{"Total Resumes:", len(list)},
		{"Uploaded:", counts[resumes.StatusUploaded]},
		{"Analyzing:", counts[resumes.StatusAnalyzing]},
		{"Analyzed:", counts[resumes.StatusAnalyzed]},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if len(row) == 0 {
			continue
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	f.SetCellStyle(sheet, "A1", "B1", style)
	return f.MergeCell(sheet, "A1", "B1")
}

func createAnalysesSheet(f *excelize.File, list []resumes.Resume) error {
	sheet := AnalysesSheet
	style, err := headerStyle(f)
	if err != nil {
		return err
	}

	header := make([]any, len(analysesHeader))
	for i, h := range analysesHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	f.SetCellStyle(sheet, "A1", "H1", style)
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "E", 15)
	f.SetColWidth(sheet, "F", "H", 50)

	row := 2
	for _, r := range list {
		if r.Status != resumes.StatusAnalyzed {
			continue
		}
		out := decodeOutput(r.AnalysisResult)
		analyzedAt := ""
		if r.AnalyzedAt != nil {
			analyzedAt = r.AnalyzedAt.UTC().Format("2006-01-02 15:04")
		}
		values := []any{
			r.OriginalFileName,
			analyzedAt,
			out.OverallFitRating,
			string(out.RiskFactor),
			string(out.RewardFactor.Level),
			strings.Join(out.CandidateStrengths, "\n"),
			strings.Join(out.CandidateWeaknesses, "\n"),
			out.Justification,
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

// decodeOutput reads whatever of the output shape the stored analysis has.
func decodeOutput(raw json.RawMessage) analysis.Output {
	var out analysis.Output
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return out
}
