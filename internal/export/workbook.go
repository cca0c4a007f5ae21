// Package export builds spreadsheet reports of risk assessments and their
// alerts and optionally archives them to object storage.
package export

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/risktier"
)

// Sheet names of the risk report workbook.
const (
	AssessmentsSheet = "Risk Assessments"
	AlertsSheet      = "Risk Alerts"
)

// ContentType is the MIME type of the generated workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var assessmentHeader = []string{
	"Company", "Statement", "Overall Risk Score", "Risk Level",
	"Z-Score Risk", "M-Score Risk", "F-Score Risk", "ML Prediction Risk", "Financial Ratio Risk",
	"Assessed At",
}

var alertHeader = []string{
	"Company", "Assessment", "Severity", "Type", "Message", "Resolved", "Resolution Notes", "Created At",
}

// Report is the content of one export.
type Report struct {
	Assessments []models.RiskAssessment
	Alerts      []models.RiskAlert
	GeneratedAt time.Time
}

// Workbook renders the report as an xlsx file with one sheet per record
// kind. Missing scores are left as empty cells, never 0.
func Workbook(r Report) (*xlsx.File, error) {
	f := xlsx.NewFile()

	sheet, err := f.AddSheet(AssessmentsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add assessments sheet")
	}
	addStrings(sheet, assessmentHeader)
	for _, a := range r.Assessments {
		row := sheet.AddRow()
		row.AddCell().SetString(a.CompanyName)
		row.AddCell().SetString(a.StatementID)
		addScore(row, a.OverallRiskScore)
		row.AddCell().SetString(levelLabel(a.RiskLevel))
		addScore(row, a.ZScoreRisk)
		addScore(row, a.MScoreRisk)
		addScore(row, a.FScoreRisk)
		addScore(row, a.MLPredictionRisk)
		addScore(row, a.FinancialRatioRisk)
		row.AddCell().SetString(a.AssessedAt)
	}

	sheet, err = f.AddSheet(AlertsSheet)
	if err != nil {
		return nil, eris.Wrap(err, "export: add alerts sheet")
	}
	addStrings(sheet, alertHeader)
	for _, al := range r.Alerts {
		row := sheet.AddRow()
		row.AddCell().SetString(al.CompanyName)
		row.AddCell().SetString(al.AssessmentID)
		row.AddCell().SetString(al.Severity)
		row.AddCell().SetString(al.AlertType)
		row.AddCell().SetString(al.Message)
		row.AddCell().SetBool(al.IsResolved)
		notes := ""
		if al.ResolutionNotes != nil {
			notes = *al.ResolutionNotes
		}
		row.AddCell().SetString(notes)
		row.AddCell().SetString(al.CreatedAt)
	}

	return f, nil
}

// Write renders the report to w.
func Write(w io.Writer, r Report) error {
	f, err := Workbook(r)
	if err != nil {
		return err
	}
	return eris.Wrap(f.Write(w), "export: write workbook")
}

// Bytes renders the report into memory.
func Bytes(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addStrings(sheet *xlsx.Sheet, cells []string) {
	row := sheet.AddRow()
	for _, c := range cells {
		row.AddCell().SetString(c)
	}
}

func addScore(row *xlsx.Row, v *float64) {
	cell := row.AddCell()
	if v != nil {
		cell.SetFloatWithFormat(*v, "0.0")
	}
}

func levelLabel(level string) string {
	if level == "" {
		return risktier.Neutral.Label()
	}
	return level
}

// ── Collection ───────────────────────────────────────────────────

// MaxPages bounds how many backend pages one export reads.
const MaxPages = 50

// PageFunc fetches one page of a list.
type PageFunc[T any] func(ctx context.Context, page, size int) (*models.Page[T], error)

// Collect reads every page of a list, up to MaxPages.
func Collect[T any](ctx context.Context, size int, fetch PageFunc[T]) ([]T, error) {
	var out []T
	for page := 0; page < MaxPages; page++ {
		p, err := fetch(ctx, page, size)
		if err != nil {
			return nil, eris.Wrapf(err, "export: page %d", page)
		}
		out = append(out, p.Content...)
		if len(p.Content) == 0 || page+1 >= p.TotalPages {
			break
		}
	}
	return out, nil
}
