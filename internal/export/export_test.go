package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"fraud-dashboard/internal/models"
	"fraud-dashboard/internal/storage"
)

func ptr(v float64) *float64 { return &v }

func sampleReport() Report {
	notes := "Reviewed with the audit team."
	return Report{
		Assessments: []models.RiskAssessment{
			{ID: "a1", CompanyName: "Acme", StatementID: "s1", OverallRiskScore: ptr(72.5), RiskLevel: "HIGH", ZScoreRisk: ptr(80)},
			{ID: "a2", CompanyName: "Globex", StatementID: "s2"},
		},
		Alerts: []models.RiskAlert{
			{ID: "r1", CompanyName: "Acme", AssessmentID: "a1", Severity: "HIGH", AlertType: "Z_SCORE", Message: "Distress zone", IsResolved: true, ResolutionNotes: &notes},
		},
	}
}

func openBytes(t *testing.T, data []byte) *xlsx.File {
	t.Helper()
	f, err := xlsx.OpenBinary(data)
	require.NoError(t, err)
	return f
}

func TestWorkbookSheets(t *testing.T) {
	data, err := Bytes(sampleReport())
	require.NoError(t, err)
	f := openBytes(t, data)

	sheet, ok := f.Sheet[AssessmentsSheet]
	require.True(t, ok)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Company", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "Acme", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "HIGH", sheet.Rows[1].Cells[3].String())

	score, err := sheet.Rows[1].Cells[2].Float()
	require.NoError(t, err)
	assert.InDelta(t, 72.5, score, 1e-9)

	alerts, ok := f.Sheet[AlertsSheet]
	require.True(t, ok)
	require.Len(t, alerts.Rows, 2)
	assert.Equal(t, "Reviewed with the audit team.", alerts.Rows[1].Cells[6].String())
}

func TestWorkbookLeavesMissingScoresEmpty(t *testing.T) {
	data, err := Bytes(sampleReport())
	require.NoError(t, err)
	row := openBytes(t, data).Sheet[AssessmentsSheet].Rows[2]

	assert.Equal(t, "", row.Cells[2].Value, "nil score must not be written as 0")
	assert.Equal(t, "Unknown", row.Cells[3].String())
}

func TestCollectReadsAllPages(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, page, size int) (*models.Page[int], error) {
		calls++
		assert.Equal(t, 2, size)
		pages := [][]int{{1, 2}, {3, 4}, {5}}
		return &models.Page[int]{Content: pages[page], TotalPages: 3, TotalElements: 5}, nil
	}

	got, err := Collect(context.Background(), 2, fetch)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, got)
	assert.Equal(t, 3, calls)
}

func TestCollectStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Collect(context.Background(), 10, func(context.Context, int, int) (*models.Page[int], error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestArchiverSavesUnderDatedKey(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir(), "/files")
	require.NoError(t, err)
	now := time.Date(2026, 3, 9, 14, 5, 6, 0, time.UTC)
	a := NewArchiver(store, WithNow(func() time.Time { return now }))

	info, err := a.Archive(context.Background(), sampleReport())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(info.Path, "exports/2026-03-09/risk-assessments-140506-"), info.Path)
	assert.Equal(t, ContentType, info.FileType)

	rc, err := store.Open(context.Background(), info.Path)
	require.NoError(t, err)
	defer rc.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(rc)
	require.NoError(t, err)
	_, ok := openBytes(t, buf.Bytes()).Sheet[AlertsSheet]
	assert.True(t, ok)
}
