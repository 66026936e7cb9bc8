package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type LessonHandler struct {
	BaseHandler
	lessonService services.LessonService
}

func NewLessonHandler(lessonService services.LessonService, logger utils.Logger) *LessonHandler {
	return &LessonHandler{
		BaseHandler:   NewBaseHandler(logger),
		lessonService: lessonService,
	}
}

// @Router /lecciones [post]
func (h *LessonHandler) CreateLesson(c *gin.Context) {
	var req services.CreateLessonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lesson, err := h.lessonService.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Lección creada exitosamente", lesson)
}

// @Router /lecciones/{id} [get]
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lesson, err := h.lessonService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Lección obtenida exitosamente", lesson)
}

// @Router /lecciones/{id} [put]
func (h *LessonHandler) UpdateLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateLessonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	lesson, err := h.lessonService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Lección actualizada exitosamente", lesson)
}

// @Router /lecciones/{id} [delete]
func (h *LessonHandler) DeleteLesson(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.lessonService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Lección eliminada exitosamente", nil)
}

// InstructorLessons lists every lesson, drafts included, of a managed course
// @Router /profesor/cursos/{id}/lecciones [get]
func (h *LessonHandler) InstructorLessons(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	lessons, err := h.lessonService.ListForInstructor(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Lecciones obtenidas exitosamente", lessons)
}
