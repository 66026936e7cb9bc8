package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type AssignmentHandler struct {
	BaseHandler
	assignmentService services.AssignmentService
}

func NewAssignmentHandler(assignmentService services.AssignmentService, logger utils.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		assignmentService: assignmentService,
	}
}

// @Router /tareas [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.assignmentService.List(c.Request.Context(), actor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tareas obtenidas exitosamente", assignments)
}

// @Router /tareas [post]
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req services.CreateAssignmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Assignment created", "assignment_id", assignment.ID, "course_id", assignment.CourseID)
	h.RespondWithSuccess(c, http.StatusCreated, "Tarea creada exitosamente", assignment)
}

// @Router /tareas/{id} [get]
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignment, err := h.assignmentService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tarea obtenida exitosamente", assignment)
}

// @Router /tareas/{id} [put]
func (h *AssignmentHandler) UpdateAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateAssignmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	assignment, err := h.assignmentService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tarea actualizada exitosamente", assignment)
}

// DeleteAssignment refuses with 422 while the assignment has submissions
// @Router /tareas/{id} [delete]
func (h *AssignmentHandler) DeleteAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.assignmentService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tarea eliminada exitosamente", nil)
}

// @Router /cursos/{id}/tareas [get]
func (h *AssignmentHandler) CourseAssignments(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignments, err := h.assignmentService.ListByCourse(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tareas obtenidas exitosamente", assignments)
}

// @Router /lecciones/{id}/tareas [get]
func (h *AssignmentHandler) LessonAssignments(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	assignments, err := h.assignmentService.ListByLesson(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tareas obtenidas exitosamente", assignments)
}

// ===== STUDENT =====

// @Router /estudiante/tareas-pendientes [get]
func (h *AssignmentHandler) PendingAssignments(c *gin.Context) {
	pending, err := h.assignmentService.PendingForStudent(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tareas pendientes obtenidas exitosamente", pending)
}

// @Router /estudiante/tareas/{id} [get]
func (h *AssignmentHandler) StudentAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	view, err := h.assignmentService.StudentView(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Tarea obtenida exitosamente", view)
}
