package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
	lessonService services.LessonService
}

func NewCourseHandler(courseService services.CourseService, lessonService services.LessonService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
		lessonService: lessonService,
	}
}

// ===== CATALOG =====

// ListCourses lists active courses, filtered and optionally searched with ?termino=
// @Router /cursos [get]
func (h *CourseHandler) ListCourses(c *gin.Context) {
	filters, err := parseCourseFilters(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	page, err := h.courseService.List(c.Request.Context(), filters, c.Query("termino"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	page.Data = publicCourses(page.Data)
	h.RespondWithSuccess(c, http.StatusOK, "Cursos obtenidos exitosamente", page)
}

// @Router /cursos/populares [get]
func (h *CourseHandler) PopularCourses(c *gin.Context) {
	courses, err := h.courseService.Popular(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Cursos populares obtenidos exitosamente", publicCourses(courses))
}

// @Router /cursos/estadisticas [get]
func (h *CourseHandler) CourseStatistics(c *gin.Context) {
	stats, err := h.courseService.Statistics(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Estadísticas obtenidas exitosamente", stats)
}

// @Router /cursos/{id} [get]
func (h *CourseHandler) GetCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	course, err := h.courseService.Detail(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Curso obtenido exitosamente", course)
}

// @Router /cursos/{id}/lecciones [get]
func (h *CourseHandler) CourseLessons(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lessons, err := h.lessonService.ListByCourse(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Lecciones obtenidas exitosamente", lessons)
}

// ===== AUTHORING =====

// @Router /cursos [post]
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Course created", "course_id", course.ID)
	h.RespondWithSuccess(c, http.StatusCreated, "Curso creado exitosamente", course)
}

// @Router /cursos/{id} [put]
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	course, err := h.courseService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Curso actualizado exitosamente", course)
}

// @Router /cursos/{id} [delete]
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.courseService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Course deleted", "course_id", id)
	h.RespondWithSuccess(c, http.StatusOK, "Curso eliminado exitosamente", nil)
}

func publicCourses(courses []*models.Course) []*models.Course {
	out := make([]*models.Course, len(courses))
	for i, course := range courses {
		out[i] = course.PublicView()
	}
	return out
}
