package handlers

import (
	"net/http"
	"strings"

	"github.com/SAP-F-2025/lms-service/internal/models"
	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type ResourceHandler struct {
	BaseHandler
	resourceService services.ResourceService
}

func NewResourceHandler(resourceService services.ResourceService, logger utils.Logger) *ResourceHandler {
	return &ResourceHandler{
		BaseHandler:     NewBaseHandler(logger),
		resourceService: resourceService,
	}
}

// ListResources accepts curso_id, tipo, estado, q, page and per_page
// @Router /recursos [get]
func (h *ResourceHandler) ListResources(c *gin.Context) {
	query, err := parseResourceQuery(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.list(c, query)
}

// @Router /recursos/buscar [get]
func (h *ResourceHandler) SearchResources(c *gin.Context) {
	query, err := parseResourceQuery(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	if strings.TrimSpace(query.Term) == "" {
		h.handleServiceError(c, services.NewValidationError("q", "es obligatorio", nil))
		return
	}
	h.list(c, query)
}

// @Router /recursos/tipo/{tipo} [get]
func (h *ResourceHandler) ResourcesByType(c *gin.Context) {
	query, err := parseResourceQuery(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	kind := models.ResourceType(strings.ToLower(strings.TrimSpace(c.Param("tipo"))))
	if !isResourceType(kind) {
		h.handleServiceError(c, services.NewValidationError("tipo", "no es un tipo de recurso válido", c.Param("tipo")))
		return
	}
	query.Type = &kind
	h.list(c, query)
}

func (h *ResourceHandler) list(c *gin.Context, query services.ResourceQuery) {
	page, err := h.resourceService.List(c.Request.Context(), actor(c), query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Recursos obtenidos exitosamente", page)
}

// @Router /recursos [post]
func (h *ResourceHandler) CreateResource(c *gin.Context) {
	var req services.CreateResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resource, err := h.resourceService.Create(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Resource created", "resource_id", resource.ID, "course_id", resource.CourseID)
	h.RespondWithSuccess(c, http.StatusCreated, "Recurso creado exitosamente", resource)
}

// @Router /recursos/{id} [get]
func (h *ResourceHandler) GetResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resource, err := h.resourceService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Recurso obtenido exitosamente", resource)
}

// @Router /recursos/{id} [put]
func (h *ResourceHandler) UpdateResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateResourceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resource, err := h.resourceService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Recurso actualizado exitosamente", resource)
}

// @Router /recursos/{id} [delete]
func (h *ResourceHandler) DeleteResource(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.resourceService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogInfo(c, "Resource deleted", "resource_id", id)
	h.RespondWithSuccess(c, http.StatusOK, "Recurso eliminado exitosamente", nil)
}

// @Router /cursos/{id}/recursos [get]
func (h *ResourceHandler) CourseResources(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	resources, err := h.resourceService.ListByCourse(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Recursos del curso obtenidos exitosamente", resources)
}

func isResourceType(kind models.ResourceType) bool {
	for _, t := range models.ResourceTypes {
		if t == kind {
			return true
		}
	}
	return false
}
