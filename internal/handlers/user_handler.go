package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/middleware"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

// UserHandler serves the admin user management and the student profile.
type UserHandler struct {
	BaseHandler
	userService services.UserService
}

func NewUserHandler(userService services.UserService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userService: userService,
	}
}

// ===== ADMIN =====

// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	filters, err := parseUserFilters(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	page, err := h.userService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Usuarios obtenidos exitosamente", page)
}

// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Usuario obtenido exitosamente", user)
}

// @Router /admin/users [post]
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Create(c.Request.Context(), &req, middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusCreated, "Usuario creado exitosamente", user)
}

// @Router /admin/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateUserRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, &req, middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Usuario actualizado exitosamente", user)
}

// @Router /admin/users/{id} [delete]
func (h *UserHandler) DeleteUser(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id, middleware.CurrentUserID(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogInfo(c, "User deleted", "deleted_user_id", id)
	h.RespondWithSuccess(c, http.StatusOK, "Usuario eliminado exitosamente", nil)
}

// ===== PROFILE =====

// @Router /estudiante/perfil [get]
func (h *UserHandler) Profile(c *gin.Context) {
	user, err := h.userService.Profile(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Perfil obtenido exitosamente", user)
}

// @Router /estudiante/perfil [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req services.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), middleware.CurrentUserID(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Perfil actualizado exitosamente", user)
}

// @Router /estudiante/cambiar-contrasena [put]
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if err := h.userService.ChangePassword(c.Request.Context(), middleware.CurrentUserID(c), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Contraseña actualizada exitosamente", nil)
}
