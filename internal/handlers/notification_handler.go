package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
}

func NewNotificationHandler(notificationService services.NotificationService, logger utils.Logger) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
	}
}

// ListNotifications pages through the caller's inbox; no_leidas=true keeps unread only
// @Router /notificaciones [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	p := newQueryParser(c)
	unread := p.boolParam("no_leidas")
	page, perPage := p.page()
	if err := p.err(); err != nil {
		h.handleServiceError(c, err)
		return
	}

	ctx, userID := c.Request.Context(), middleware.CurrentUserID(c)
	notifications, err := h.notificationService.List(ctx, userID, unread, page, perPage)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	count, err := h.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.RespondWithSuccess(c, http.StatusOK, "Notificaciones obtenidas exitosamente", gin.H{
		"notificaciones": notifications,
		"no_leidas":      count,
	})
}

// @Router /notificaciones/{id}/leer [put]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	notification, err := h.notificationService.MarkRead(c.Request.Context(), middleware.CurrentUserID(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Notificación marcada como leída", notification)
}

// @Router /notificaciones/leer-todas [put]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	marked, err := h.notificationService.MarkAllRead(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Notificaciones marcadas como leídas", gin.H{"actualizadas": marked})
}
