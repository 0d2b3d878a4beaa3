package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/student-service/internal/repositories"
)

type reportService struct {
	repo       repositories.Repository
	enrollment EnrollmentService
	logger     *slog.Logger
}

func NewReportService(repo repositories.Repository, enrollment EnrollmentService, logger *slog.Logger) ReportService {
	return &reportService{
		repo:       repo,
		enrollment: enrollment,
		logger:     logger,
	}
}

// ExportEnrollments renders the filtered enrollment list plus a summary
// sheet to an xlsx workbook.
func (s *reportService) ExportEnrollments(ctx context.Context, filters repositories.EnrollmentFilters) ([]byte, error) {
	// Export everything matching the filters, not one page.
	filters.Limit = 10000
	filters.Offset = 0

	enrollments, _, err := s.repo.Enrollment().List(ctx, filters)
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	stats, err := s.repo.Enrollment().Stats(ctx)
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Enrollments"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	headers := []string{"Enrollment ID", "Student ID", "Course ID", "Status", "Grade", "Enrolled At", "Last Updated"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", "G1", headerStyle)
	f.SetColWidth(sheet, "A", "G", 16)

	for row, e := range enrollments {
		values := []interface{}{
			e.ID,
			e.StudentID,
			e.CourseID,
			string(e.Status),
			gradeCell(e.Grade),
			e.EnrolledAt.Format(time.RFC3339),
			e.LastUpdated.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	const summary = "Summary"
	if _, err := f.NewSheet(summary); err != nil {
		return nil, NewUnavailableError(err)
	}
	summaryRows := [][]interface{}{
		{"Total", stats.Total},
		{"Active", stats.Active},
		{"Completed", stats.Completed},
		{"Dropped", stats.Dropped},
		{"Generated", time.Now().Format(time.RFC3339)},
	}
	for i, row := range summaryRows {
		f.SetCellValue(summary, fmt.Sprintf("A%d", i+1), row[0])
		f.SetCellValue(summary, fmt.Sprintf("B%d", i+1), row[1])
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewUnavailableError(err)
	}

	s.logger.Info("Enrollment report exported", "rows", len(enrollments))
	return buf.Bytes(), nil
}

// ExportTrends renders the daily enrollment counts for the range to an
// xlsx workbook, one row per day in ascending order.
func (s *reportService) ExportTrends(ctx context.Context, startDate, endDate time.Time) ([]byte, error) {
	trends, err := s.enrollment.Trends(ctx, startDate, endDate)
	if err != nil {
		return nil, err
	}

	days := make([]string, 0, len(trends.DailyCounts))
	for day := range trends.DailyCounts {
		days = append(days, day)
	}
	sort.Strings(days)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Trends"
	f.SetSheetName("Sheet1", sheet)
	f.SetCellValue(sheet, "A1", "Day")
	f.SetCellValue(sheet, "B1", "Enrollments")
	for i, day := range days {
		f.SetCellValue(sheet, fmt.Sprintf("A%d", i+2), day)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", i+2), trends.DailyCounts[day])
	}

	footer := len(days) + 3
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer), "Total")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", footer), trends.Total)
	f.SetCellValue(sheet, fmt.Sprintf("A%d", footer+1), "Average per day")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", footer+1), trends.AveragePerDay)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, NewUnavailableError(err)
	}
	return buf.Bytes(), nil
}

func gradeCell(grade *float64) interface{} {
	if grade == nil {
		return ""
	}
	return *grade
}
