package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// PaymentHandler serves course purchases and the teacher payment history.
type PaymentHandler struct {
	BaseHandler
	paymentService services.PaymentService
}

func NewPaymentHandler(paymentService services.PaymentService, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		paymentService: paymentService,
	}
}

// @Router /cursos/{id}/pagar [post]
func (h *PaymentHandler) PayCourse(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.PayCourseRequest
	if !h.bindJSON(c, &req) {
		return
	}

	tx, err := h.paymentService.Pay(c.Request.Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Course paid", "course_id", id, "transaction", tx.Number)
	h.RespondWithSuccess(c, http.StatusCreated, "Pago realizado exitosamente", tx)
}

// @Router /profesor/pagos [get]
func (h *PaymentHandler) TeacherPayments(c *gin.Context) {
	payments, err := h.paymentService.TeacherPayments(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Pagos obtenidos exitosamente", payments)
}
