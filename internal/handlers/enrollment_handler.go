package handlers

import (
	"context"
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

// @Router /inscripciones [get]
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	enrollments, err := h.enrollmentService.ListMine(c.Request.Context(), actor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Inscripciones obtenidas exitosamente", enrollments)
}

// @Router /inscripciones [post]
func (h *EnrollmentHandler) CreateEnrollment(c *gin.Context) {
	var req services.CreateEnrollmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Enrollment created", "enrollment_id", enrollment.ID, "course_id", enrollment.CourseID)
	h.RespondWithSuccess(c, http.StatusCreated, "Inscripción creada exitosamente", enrollment)
}

// @Router /inscripciones/{id} [get]
func (h *EnrollmentHandler) GetEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	enrollment, err := h.enrollmentService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Inscripción obtenida exitosamente", enrollment)
}

// @Router /inscripciones/{id} [put]
func (h *EnrollmentHandler) UpdateEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateEnrollmentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Inscripción actualizada exitosamente", enrollment)
}

// @Router /inscripciones/{id} [delete]
func (h *EnrollmentHandler) DeleteEnrollment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.enrollmentService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Inscripción eliminada exitosamente", nil)
}

// @Router /cursos/{id}/inscripciones [get]
func (h *EnrollmentHandler) CourseEnrollments(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	enrollments, err := h.enrollmentService.ListByCourse(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Inscripciones obtenidas exitosamente", enrollments)
}

// @Router /profesor/inscripciones/{id}/progreso [put]
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateProgressRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.UpdateProgress(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Progreso actualizado exitosamente", enrollment)
}

// ===== COURSE ACCESS =====

// @Router /cursos/{id}/invitar [post]
func (h *EnrollmentHandler) InviteStudent(c *gin.Context) {
	h.grantAccess(c, h.enrollmentService.InviteByEmail, "Invitación enviada exitosamente")
}

// @Router /cursos/{id}/agregar-alumno [post]
func (h *EnrollmentHandler) AddStudent(c *gin.Context) {
	h.grantAccess(c, h.enrollmentService.AddStudentManually, "Alumno agregado exitosamente")
}

func (h *EnrollmentHandler) grantAccess(
	c *gin.Context,
	grant func(ctx context.Context, a services.Actor, courseID uint, req *services.InviteStudentRequest) (*models.Enrollment, error),
	message string,
) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.InviteStudentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := grant(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, message, enrollment)
}

// @Router /cursos/{id}/generar-codigo-invitacion [post]
func (h *EnrollmentHandler) GenerateInvitationCode(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	code, err := h.enrollmentService.GenerateInvitationCode(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Código de invitación generado exitosamente", gin.H{
		"codigo_invitacion": code,
	})
}

// @Router /cursos/{id}/inscribirse [post]
func (h *EnrollmentHandler) EnrollWithCode(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.EnrollWithCodeRequest
	if !h.bindJSON(c, &req) {
		return
	}

	enrollment, err := h.enrollmentService.EnrollWithCode(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Inscripción realizada exitosamente", enrollment)
}
