package services

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportSessionToExcel(t *testing.T) {
	f := newServiceFixture(t, constantArtifact(0))
	ctx := context.Background()
	reports := NewReportService(f.svc, slog.Default())

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.SubmitMemory(ctx, resp.ID, &MemorySubmissionRequest{Sequence: "000000"})
	require.NoError(t, err)
	_, err = f.svc.Predict(ctx, resp.ID)
	require.NoError(t, err)

	data, err := reports.ExportSessionToExcel(ctx, resp.ID)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("Screening Results")
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "Section", rows[0][0])

	flat := ""
	for _, row := range rows {
		for _, cell := range row {
			flat += cell + "|"
		}
	}
	assert.Contains(t, flat, "memory")
	assert.Contains(t, flat, "Language_vocab")
	assert.Contains(t, flat, "high")
}

func TestExportSessionWithoutScores(t *testing.T) {
	f := newServiceFixture(t, nil)
	ctx := context.Background()
	reports := NewReportService(f.svc, slog.Default())

	resp, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = reports.ExportSessionToExcel(ctx, resp.ID)
	assert.ErrorIs(t, err, ErrNoScoresRecorded)
}

func TestExportMissingSession(t *testing.T) {
	f := newServiceFixture(t, nil)
	reports := NewReportService(f.svc, slog.Default())

	_, err := reports.ExportSessionToExcel(context.Background(), "missing")
	assert.True(t, IsNotFound(err))
}
