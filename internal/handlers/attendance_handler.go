package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AttendanceHandler struct {
	BaseHandler
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(attendanceService services.AttendanceService, logger utils.Logger) *AttendanceHandler {
	return &AttendanceHandler{
		BaseHandler:       NewBaseHandler(logger),
		attendanceService: attendanceService,
	}
}

// @Router /asistencias [get]
func (h *AttendanceHandler) ListAttendance(c *gin.Context) {
	h.index(c, 0, 0)
}

// @Router /cursos/{id}/asistencias [get]
func (h *AttendanceHandler) CourseAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.index(c, id, 0)
}

// @Router /estudiantes/{id}/asistencias [get]
func (h *AttendanceHandler) StudentAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.index(c, 0, id)
}

// index lists attendance, pinning the course or student taken from the path.
func (h *AttendanceHandler) index(c *gin.Context, courseID, studentID uint) {
	filters, err := parseAttendanceFilters(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if courseID != 0 {
		filters.CourseID = &courseID
	}
	if studentID != 0 {
		filters.StudentID = &studentID
	}

	page, err := h.attendanceService.Index(c.Request.Context(), actor(c), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Asistencias obtenidas exitosamente", page)
}

// @Router /asistencias [post]
func (h *AttendanceHandler) RecordAttendance(c *gin.Context) {
	var req services.RecordAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.attendanceService.Record(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Asistencia registrada exitosamente", record)
}

// @Router /asistencias/{id} [get]
func (h *AttendanceHandler) GetAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	record, err := h.attendanceService.Show(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Asistencia obtenida exitosamente", record)
}

// @Router /asistencias/{id} [put]
func (h *AttendanceHandler) UpdateAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAttendanceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	record, err := h.attendanceService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Asistencia actualizada exitosamente", record)
}

// @Router /asistencias/{id} [delete]
func (h *AttendanceHandler) DeleteAttendance(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.attendanceService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Asistencia eliminada exitosamente", nil)
}

// @Router /cursos/{id}/asistencias/estadisticas [get]
func (h *AttendanceHandler) CourseAttendanceStatistics(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.attendanceService.CourseStatistics(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Estadísticas obtenidas exitosamente", stats)
}
