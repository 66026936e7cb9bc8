package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	BaseHandler
	contactService services.ContactService
}

func NewContactHandler(contactService services.ContactService, logger utils.Logger) *ContactHandler {
	return &ContactHandler{
		BaseHandler:    NewBaseHandler(logger),
		contactService: contactService,
	}
}

// SubmitContact stores a public contact form and notifies the contact mailbox
// @Router /contacto [post]
func (h *ContactHandler) SubmitContact(c *gin.Context) {
	var req services.ContactRequest
	if !h.bindJSON(c, &req) {
		return
	}

	contact, err := h.contactService.Submit(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Mensaje de contacto enviado exitosamente", contact)
}
