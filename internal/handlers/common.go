package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/SAP-F-2025/lms-service/internal/errors"
	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// ===== COMMON RESPONSE STRUCTURES =====

// SuccessResponse is the envelope of every 2xx body.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every error body.
type ErrorResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  interface{} `json:"errors,omitempty"`
}

const internalErrorMessage = "Error interno del servidor"

// ===== BASE HANDLER STRUCT =====

// BaseHandler provides common logging and response helpers for all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) requestFields(c *gin.Context, additionalFields ...interface{}) []interface{} {
	fields := []interface{}{
		"request_id", c.GetHeader(middleware.RequestIDHeader),
		"user_id", middleware.CurrentUserID(c),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	}
	return append(fields, additionalFields...)
}

// LogRequest logs incoming HTTP requests with context information
func (h *BaseHandler) LogRequest(c *gin.Context, message string, additionalFields ...interface{}) {
	fields := h.requestFields(c, additionalFields...)
	fields = append(fields,
		"remote_addr", c.ClientIP(),
		"timestamp", time.Now().Format(time.RFC3339),
	)
	h.logger.Info(message, fields...)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, message string, additionalFields ...interface{}) {
	h.logger.LogError(err, message, h.requestFields(c, additionalFields...)...)
}

func (h *BaseHandler) LogInfo(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Info(message, h.requestFields(c, additionalFields...)...)
}

func (h *BaseHandler) LogWarn(c *gin.Context, message string, additionalFields ...interface{}) {
	h.logger.Warn(message, h.requestFields(c, additionalFields...)...)
}

// RespondWithError sends a consistent error response and logs it
func (h *BaseHandler) RespondWithError(c *gin.Context, statusCode int, message string, err error, details ...interface{}) {
	resp := ErrorResponse{Success: false, Message: message}
	if len(details) > 0 {
		resp.Errors = details[0]
	}

	if err != nil && statusCode >= http.StatusInternalServerError {
		h.LogError(c, err, message, "status_code", statusCode)
	} else if err != nil {
		h.LogWarn(c, message, "status_code", statusCode, "error", err.Error())
	}

	c.AbortWithStatusJSON(statusCode, resp)
}

// RespondWithSuccess sends a consistent success response
func (h *BaseHandler) RespondWithSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ===== ERROR MAPPING =====

// handleServiceError maps the service error taxonomy to HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var ve apperrors.ValidationErrors
	var bre *services.BusinessRuleError

	switch {
	case errors.As(err, &ve):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Error de validación", err, ve.ByField())
	case services.IsValidation(err):
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Error de validación", err)
	case errors.As(err, &bre):
		h.RespondWithError(c, http.StatusUnprocessableEntity, bre.Message, err)
	case services.IsUnauthenticated(err):
		h.RespondWithError(c, http.StatusUnauthorized, "Credenciales inválidas", err)
	case services.IsForbidden(err):
		h.RespondWithError(c, http.StatusForbidden, "Acceso denegado", err)
	case services.IsNotFound(err):
		h.RespondWithError(c, http.StatusNotFound, notFoundMessage(err), err)
	case services.IsConflict(err):
		h.RespondWithError(c, http.StatusConflict, conflictMessage(err), err)
	case services.IsBadRequest(err):
		h.RespondWithError(c, http.StatusBadRequest, badRequestMessage(err), err)
	case services.IsPaymentFailed(err):
		h.RespondWithError(c, http.StatusPaymentRequired, "No se pudo procesar el pago", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, internalErrorMessage, err)
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		return "Usuario no encontrado"
	case errors.Is(err, services.ErrCourseNotFound):
		return "Curso no encontrado"
	case errors.Is(err, services.ErrEnrollmentNotFound):
		return "Inscripción no encontrada"
	case errors.Is(err, services.ErrLessonNotFound):
		return "Lección no encontrada"
	case errors.Is(err, services.ErrAssignmentNotFound):
		return "Tarea no encontrada"
	case errors.Is(err, services.ErrSubmissionNotFound):
		return "Entrega no encontrada"
	case errors.Is(err, services.ErrGradeNotFound):
		return "Calificación no encontrada"
	case errors.Is(err, services.ErrMessageNotFound):
		return "Mensaje no encontrado"
	case errors.Is(err, services.ErrAttendanceNotFound):
		return "Asistencia no encontrada"
	case errors.Is(err, services.ErrResourceNotFound):
		return "Recurso adicional no encontrado"
	case errors.Is(err, services.ErrMultimediaNotFound):
		return "Multimedia no encontrado"
	case errors.Is(err, services.ErrNotificationNotFound):
		return "Notificación no encontrada"
	case errors.Is(err, services.ErrNotEnrolled):
		return "No estás inscrito en este curso"
	default:
		return "Recurso no encontrado"
	}
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEnrollmentExists):
		return "El usuario ya está inscrito en este curso"
	case errors.Is(err, services.ErrSubmissionExists):
		return "Ya has entregado esta tarea"
	case errors.Is(err, services.ErrAttendanceExists):
		return "Ya existe un registro de asistencia para esta fecha"
	case errors.Is(err, services.ErrAlreadyHasAccess):
		return "El estudiante ya tiene acceso a este curso"
	case errors.Is(err, services.ErrAlreadyPaid):
		return "Ya has pagado este curso"
	case errors.Is(err, services.ErrPaymentReferenceUsed):
		return "La referencia de pago ya fue utilizada"
	default:
		return "El recurso ya existe"
	}
}

func badRequestMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrInvalidInvitationCode):
		return "Código de invitación inválido"
	case errors.Is(err, services.ErrNotAStudent):
		return "El usuario no es un estudiante"
	case errors.Is(err, services.ErrWrongPassword):
		return "La contraseña actual es incorrecta"
	default:
		return "Solicitud inválida"
	}
}

// ===== REQUEST HELPERS =====

// bindJSON decodes the body and answers 400 on malformed input.
func (h *BaseHandler) bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido", err)
		return false
	}
	return true
}

// parseIDParam returns 0 and answers 400 when the path parameter is not a positive id.
func (h *BaseHandler) parseIDParam(c *gin.Context, param string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param(param)), 10, 64)
	if err != nil || id == 0 {
		h.RespondWithError(c, http.StatusBadRequest, "Identificador inválido: "+param, nil)
		return 0
	}
	return uint(id)
}

// actor builds the service caller from the authenticated request.
func actor(c *gin.Context) services.Actor {
	return services.Actor{
		ID:   middleware.CurrentUserID(c),
		Role: middleware.CurrentRole(c),
	}
}

// viewer is the optional caller on public routes; nil when anonymous.
func viewer(c *gin.Context) *services.Actor {
	if middleware.CurrentUserID(c) == 0 {
		return nil
	}
	a := actor(c)
	return &a
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v, err := strconv.Atoi(c.Query(key)); err == nil {
		return v
	}
	return fallback
}
