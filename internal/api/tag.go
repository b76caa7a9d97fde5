package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/clientdesk/internal/service"
	"go.uber.org/zap"
)

type TagHandler struct {
	svc    *service.TagService
	logger *zap.Logger
}

func NewTagHandler(svc *service.TagService, logger *zap.Logger) *TagHandler {
	return &TagHandler{svc: svc, logger: logger}
}

// List handles GET /v1/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, tags)
}

// Create handles POST /v1/tags
func (h *TagHandler) Create(c *gin.Context) {
	var req service.TagInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tag, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// Rename handles PUT /v1/tags/:id
func (h *TagHandler) Rename(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}
	var req service.TagInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	tag, err := h.svc.Rename(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, tag)
}

// Delete handles DELETE /v1/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
