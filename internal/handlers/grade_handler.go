package handlers

import (
	"fmt"
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type GradeHandler struct {
	BaseHandler
	gradeService  services.GradeService
	exportService services.ExportService
}

func NewGradeHandler(gradeService services.GradeService, exportService services.ExportService, logger utils.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:   NewBaseHandler(logger),
		gradeService:  gradeService,
		exportService: exportService,
	}
}

// @Router /calificaciones [get]
func (h *GradeHandler) ListGrades(c *gin.Context) {
	filters, err := parseGradeFilters(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	page, err := h.gradeService.List(c.Request.Context(), actor(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificaciones obtenidas exitosamente", page)
}

// @Router /calificaciones [post]
func (h *GradeHandler) CreateGrade(c *gin.Context) {
	var req services.CreateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.gradeService.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Calificación creada exitosamente", grade)
}

// @Router /calificaciones/{id} [get]
func (h *GradeHandler) GetGrade(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	grade, err := h.gradeService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificación obtenida exitosamente", grade)
}

// @Router /calificaciones/{id} [put]
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateGradeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	grade, err := h.gradeService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificación actualizada exitosamente", grade)
}

// @Router /calificaciones/{id} [delete]
func (h *GradeHandler) DeleteGrade(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.gradeService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificación eliminada exitosamente", nil)
}

// PublishGrades publishes a batch of grades in one statement
// @Router /calificaciones/publicar [post]
func (h *GradeHandler) PublishGrades(c *gin.Context) {
	var req services.PublishGradesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	count, err := h.gradeService.Publish(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Grades published", "count", count)
	h.RespondWithSuccess(c, http.StatusOK, "Calificaciones publicadas exitosamente", gin.H{
		"calificaciones_publicadas": count,
	})
}

// @Router /cursos/{id}/calificaciones [get]
func (h *GradeHandler) CourseGrades(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	grades, err := h.gradeService.ListPublishedByCourse(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificaciones obtenidas exitosamente", grades)
}

// @Router /estudiantes/{id}/calificaciones [get]
func (h *GradeHandler) StudentGrades(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	grades, err := h.gradeService.ListPublishedByStudent(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Calificaciones obtenidas exitosamente", grades)
}

// @Router /estudiantes/{id}/cursos/{curso}/promedio [get]
func (h *GradeHandler) StudentAverage(c *gin.Context) {
	studentID := h.parseIDParam(c, "id")
	if studentID == 0 {
		return
	}
	courseID := h.parseIDParam(c, "curso")
	if courseID == 0 {
		return
	}

	avg, err := h.gradeService.StudentAverage(c.Request.Context(), actor(c), studentID, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Promedio obtenido exitosamente", avg)
}

// ExportCourseGrades streams the course grade book as an xlsx workbook
// @Router /cursos/{id}/calificaciones/exportar [get]
func (h *GradeHandler) ExportCourseGrades(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, filename, err := h.exportService.ExportCourseGrades(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
