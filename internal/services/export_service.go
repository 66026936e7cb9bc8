package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService renders course data as spreadsheets.
type ExportService interface {
	ExportCourseGrades(ctx context.Context, actor Actor, courseID uint) ([]byte, string, error)
}

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	audit  *ServiceLogger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, audit: NewServiceLogger(logger, "export")}
}

var gradeExportHeaders = []string{
	"Estudiante", "Email", "Tipo de evaluación", "Lección", "Calificación",
	"Peso", "Calificación final", "Estado", "Fecha de evaluación",
}

// ExportCourseGrades returns an XLSX workbook with every grade of the course and
// the file name to serve it under.
func (s *exportService) ExportCourseGrades(ctx context.Context, actor Actor, courseID uint) ([]byte, string, error) {
	course, err := authorizeCourse(ctx, s.repo, actor, courseID, "export_grades")
	if err != nil {
		return nil, "", err
	}
	grades, err := s.repo.Grade().ListByCourse(ctx, nil, courseID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list course grades: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Warn("Failed to close workbook", "error", err)
		}
	}()

	sheet := "Calificaciones"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	if err := writeRow(f, sheet, 1, toRow(gradeExportHeaders)); err != nil {
		return nil, "", err
	}
	for i, g := range grades {
		if err := writeRow(f, sheet, i+2, gradeRow(g)); err != nil {
			return nil, "", err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.audit.LogAuditEvent(ctx, AuditEventAccess, actor.ID, courseID, "course", "export_grades", map[string]interface{}{
		"rows": len(grades),
	})
	return buf.Bytes(), fmt.Sprintf("calificaciones_curso_%d.xlsx", course.ID), nil
}

func gradeRow(g *models.Grade) []interface{} {
	var student, email, lesson string
	if g.Student != nil {
		student, email = g.Student.Name, g.Student.Email
	}
	if g.Lesson != nil {
		lesson = g.Lesson.Title
	}
	return []interface{}{
		student,
		email,
		string(g.EvaluationType),
		lesson,
		g.Score,
		g.Weight,
		g.FinalScore,
		string(g.Status),
		g.EvaluatedAt.Format("2006-01-02 15:04"),
	}
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to resolve cell: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
