package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/lms-service/internal/services"
	"github.com/SAP-F-2025/lms-service/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const multimediaFileField = "archivo"

type MultimediaHandler struct {
	BaseHandler
	multimediaService services.MultimediaService
}

func NewMultimediaHandler(multimediaService services.MultimediaService, logger utils.Logger) *MultimediaHandler {
	return &MultimediaHandler{
		BaseHandler:       NewBaseHandler(logger),
		multimediaService: multimediaService,
	}
}

// @Router /multimedia [get]
func (h *MultimediaHandler) ListMultimedia(c *gin.Context) {
	media, err := h.multimediaService.List(c.Request.Context(), actor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia obtenido exitosamente", media)
}

// CreateMultimedia takes JSON with an external url, or a multipart form with
// the upload under archivo
// @Router /multimedia [post]
func (h *MultimediaHandler) CreateMultimedia(c *gin.Context) {
	var req services.CreateMultimediaRequest
	var file *services.UploadedFile

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Cuerpo de la solicitud inválido", err)
			return
		}
		if header, err := c.FormFile(multimediaFileField); err == nil {
			f, err := header.Open()
			if err != nil {
				h.RespondWithError(c, http.StatusBadRequest, "No se pudo leer el archivo", err)
				return
			}
			defer f.Close()
			file = &services.UploadedFile{Name: header.Filename, Size: header.Size, Content: f}
		}
	} else if !h.bindJSON(c, &req) {
		return
	}

	media, err := h.multimediaService.Create(c.Request.Context(), actor(c), &req, file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogInfo(c, "Multimedia created", "multimedia_id", media.ID, "lesson_id", media.LessonID)
	h.RespondWithSuccess(c, http.StatusCreated, "Multimedia creado exitosamente", media)
}

// @Router /multimedia/{id} [get]
func (h *MultimediaHandler) GetMultimedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	media, err := h.multimediaService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia obtenido exitosamente", media)
}

// @Router /multimedia/{id} [put]
func (h *MultimediaHandler) UpdateMultimedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateMultimediaRequest
	if !h.bindJSON(c, &req) {
		return
	}

	media, err := h.multimediaService.Update(c.Request.Context(), actor(c), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia actualizado exitosamente", media)
}

// @Router /multimedia/{id} [delete]
func (h *MultimediaHandler) DeleteMultimedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.multimediaService.Delete(c.Request.Context(), actor(c), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogInfo(c, "Multimedia deleted", "multimedia_id", id)
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia eliminado exitosamente", nil)
}

// @Router /lecciones/{id}/multimedia [get]
func (h *MultimediaHandler) LessonMultimedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	media, err := h.multimediaService.ListByLesson(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia de la lección obtenido exitosamente", media)
}

// CourseMultimedia is public; course managers also see inactive items
// @Router /cursos/{id}/multimedia [get]
func (h *MultimediaHandler) CourseMultimedia(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	media, err := h.multimediaService.ListByCourse(c.Request.Context(), viewer(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Multimedia del curso obtenido exitosamente", media)
}
