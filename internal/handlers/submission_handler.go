package handlers

import (
	"net/http"
	"strconv"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

const submissionFileField = "archivo"

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// @Router /entregas-tareas [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	submissions, err := h.submissionService.List(c.Request.Context(), actor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entregas obtenidas exitosamente", submissions)
}

// CreateSubmission takes a multipart form with tarea_id, archivo and comentarios
// @Router /entregas-tareas [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	assignmentID, err := strconv.ParseUint(c.PostForm("tarea_id"), 10, 64)
	if err != nil || assignmentID == 0 {
		h.handleServiceError(c, services.NewValidationError("tarea_id", "es obligatorio", c.PostForm("tarea_id")))
		return
	}
	h.submit(c, uint(assignmentID))
}

// @Router /estudiante/tareas/{id}/entregar [post]
func (h *SubmissionHandler) SubmitAssignment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	h.submit(c, id)
}

func (h *SubmissionHandler) submit(c *gin.Context, assignmentID uint) {
	var file *services.UploadedFile
	if header, err := c.FormFile(submissionFileField); err == nil {
		f, err := header.Open()
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "No se pudo leer el archivo", err)
			return
		}
		defer f.Close()
		file = &services.UploadedFile{Name: header.Filename, Size: header.Size, Content: f}
	}

	var comments *string
	if v, ok := c.GetPostForm("comentarios"); ok {
		comments = &v
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), middleware.CurrentUserID(c), assignmentID, file, comments)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Assignment submitted", "assignment_id", assignmentID, "submission_id", submission.ID)
	h.RespondWithSuccess(c, http.StatusCreated, "Tarea entregada exitosamente", submission)
}

// @Router /entregas-tareas/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entrega obtenida exitosamente", submission)
}

// @Router /entregas-tareas/{id} [put]
func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entrega actualizada exitosamente", submission)
}

// @Router /entregas-tareas/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entrega eliminada exitosamente", nil)
}

// @Router /entregas-tareas/{id}/calificar [put]
func (h *SubmissionHandler) GradeSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.GradeSubmissionRequest
	if !h.bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Grade(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Submission graded", "submission_id", id)
	h.RespondWithSuccess(c, http.StatusOK, "Entrega calificada exitosamente", submission)
}

// @Router /tareas/{id}/entregas [get]
func (h *SubmissionHandler) AssignmentSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submissions, err := h.submissionService.ListByAssignment(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entregas obtenidas exitosamente", submissions)
}

// @Router /estudiantes/{id}/entregas [get]
func (h *SubmissionHandler) StudentSubmissions(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	submissions, err := h.submissionService.ListByStudent(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Entregas obtenidas exitosamente", submissions)
}
