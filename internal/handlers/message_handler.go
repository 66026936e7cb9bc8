package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/repositories"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	BaseHandler
	messageService services.MessageService
}

func NewMessageHandler(messageService services.MessageService, logger utils.Logger) *MessageHandler {
	return &MessageHandler{
		BaseHandler:    NewBaseHandler(logger),
		messageService: messageService,
	}
}

// @Router /mensajes [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	h.listBox(c, repositories.MessageBoxAll)
}

// @Router /mensajes/enviados [get]
func (h *MessageHandler) SentMessages(c *gin.Context) {
	h.listBox(c, repositories.MessageBoxSent)
}

// @Router /mensajes/recibidos [get]
func (h *MessageHandler) ReceivedMessages(c *gin.Context) {
	h.listBox(c, repositories.MessageBoxReceived)
}

func (h *MessageHandler) listBox(c *gin.Context, box repositories.MessageBox) {
	page, err := h.messageService.Inbox(
		c.Request.Context(),
		middleware.CurrentUserID(c),
		box,
		queryInt(c, "page", 1),
		queryInt(c, "per_page", 0),
	)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Mensajes obtenidos exitosamente", page)
}

// @Router /mensajes [post]
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req services.SendMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Send(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Mensaje enviado exitosamente", msg)
}

// @Router /mensajes/{id} [get]
func (h *MessageHandler) GetMessage(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	msg, err := h.messageService.Show(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Mensaje obtenido exitosamente", msg)
}

// @Router /mensajes/{id} [put]
func (h *MessageHandler) UpdateMessage(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateMessageRequest
	if !h.bindJSON(c, &req) {
		return
	}

	msg, err := h.messageService.Update(c.Request.Context(), middleware.CurrentUserID(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Mensaje actualizado exitosamente", msg)
}

// @Router /mensajes/{id} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.messageService.Delete(c.Request.Context(), middleware.CurrentUserID(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Mensaje eliminado exitosamente", nil)
}

// @Router /mensajes/{id}/leer [put]
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	msg, err := h.messageService.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Mensaje marcado como leído", msg)
}
