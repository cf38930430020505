package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/screening-service/internal/models"
)

// ReportService renders a session's results as a downloadable report.
type ReportService interface {
	ExportSessionToExcel(ctx context.Context, sessionID string) ([]byte, error)
}

type reportService struct {
	screening ScreeningService
	logger    *slog.Logger
}

func NewReportService(screening ScreeningService, logger *slog.Logger) ReportService {
	return &reportService{
		screening: screening,
		logger:    logger,
	}
}

// ExportSessionToExcel builds an xlsx workbook with one row per section plus
// the derived speed score, feature vector and (when predicted) the risk level.
func (s *reportService) ExportSessionToExcel(ctx context.Context, sessionID string) ([]byte, error) {
	scores, err := s.screening.GetScores(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(scores.Scores) == 0 {
		return nil, ErrNoScoresRecorded
	}

	sess, err := s.screening.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheetName := "Screening Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Section", "Points", "Max Points", "Score", "Answered"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	row := 2
	// Iterate in presentation order; map order is random.
	for _, section := range models.AllSections {
		score, ok := scores.Scores[section]
		if !ok {
			continue
		}
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), string(section))
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), score.Points)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), score.MaxPoints)
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), score.Value)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), score.Answered)
		row++
	}

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "speed")
	f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), scores.Speed.Value)
	row += 2

	f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Feature")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), "Value")
	row++
	featureValues := scores.Features.Values()
	featureNames := models.FeatureColumns()
	for i, name := range featureNames {
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), name)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), featureValues[i])
		row++
	}

	if sess.Risk != nil {
		row++
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), "Risk")
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), string(*sess.Risk))
		row++
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), sess.Risk.Description())
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Session report exported", "session_id", sessionID, "bytes", buf.Len())
	return buf.Bytes(), nil
}
