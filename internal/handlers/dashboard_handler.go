package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the role-specific dashboards under /admin, /profesor and /estudiante.
type DashboardHandler struct {
	BaseHandler
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler:      NewBaseHandler(logger),
		dashboardService: dashboardService,
	}
}

func (h *DashboardHandler) respond(c *gin.Context, data interface{}, err error, message string) {
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, message, data)
}

// ===== ADMIN =====

// @Router /admin/dashboard [get]
func (h *DashboardHandler) AdminDashboard(c *gin.Context) {
	data, err := h.dashboardService.AdminDashboard(c.Request.Context())
	h.respond(c, data, err, "Dashboard obtenido exitosamente")
}

// @Router /admin/stats [get]
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	data, err := h.dashboardService.AdminStats(c.Request.Context())
	h.respond(c, data, err, "Estadísticas obtenidas exitosamente")
}

// ===== TEACHER =====

// @Router /profesor/dashboard [get]
func (h *DashboardHandler) TeacherDashboard(c *gin.Context) {
	data, err := h.dashboardService.TeacherDashboard(c.Request.Context(), middleware.CurrentUserID(c))
	h.respond(c, data, err, "Dashboard obtenido exitosamente")
}

// @Router /profesor/cursos [get]
func (h *DashboardHandler) TeacherCourses(c *gin.Context) {
	data, err := h.dashboardService.TeacherCourses(c.Request.Context(), middleware.CurrentUserID(c))
	h.respond(c, data, err, "Cursos obtenidos exitosamente")
}

// @Router /profesor/cursos/{id}/estudiantes [get]
func (h *DashboardHandler) TeacherCourseStudents(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	data, err := h.dashboardService.TeacherCourseStudents(c.Request.Context(), actor(c), id)
	h.respond(c, data, err, "Estudiantes obtenidos exitosamente")
}

// @Router /profesor/cursos/{id}/estadisticas [get]
func (h *DashboardHandler) TeacherCourseStatistics(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	data, err := h.dashboardService.TeacherCourseStatistics(c.Request.Context(), actor(c), id)
	h.respond(c, data, err, "Estadísticas obtenidas exitosamente")
}

// ===== STUDENT =====

// @Router /estudiante/dashboard [get]
func (h *DashboardHandler) StudentDashboard(c *gin.Context) {
	data, err := h.dashboardService.StudentDashboard(c.Request.Context(), middleware.CurrentUserID(c))
	h.respond(c, data, err, "Dashboard obtenido exitosamente")
}

// @Router /estudiante/materias [get]
func (h *DashboardHandler) StudentCourses(c *gin.Context) {
	data, err := h.dashboardService.StudentCourses(c.Request.Context(), middleware.CurrentUserID(c))
	h.respond(c, data, err, "Materias obtenidas exitosamente")
}

// @Router /estudiante/calificaciones [get]
func (h *DashboardHandler) StudentGrades(c *gin.Context) {
	data, err := h.dashboardService.StudentGrades(c.Request.Context(), middleware.CurrentUserID(c))
	h.respond(c, data, err, "Calificaciones obtenidas exitosamente")
}
