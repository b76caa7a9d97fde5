package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/clientdesk/internal/filter"
	"github.com/lalith-99/clientdesk/internal/models"
	"github.com/lalith-99/clientdesk/internal/phone"
	"github.com/lalith-99/clientdesk/internal/service"
	"go.uber.org/zap"
)

type ClientHandler struct {
	svc    *service.ClientService
	logger *zap.Logger
}

func NewClientHandler(svc *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{svc: svc, logger: logger}
}

// clientResponse adds the display form of the phone number.
type clientResponse struct {
	models.Client
	PhoneDisplay string `json:"phone_display"`
}

func toClientResponse(c models.Client) clientResponse {
	return clientResponse{Client: c, PhoneDisplay: phone.Format(c.Phone)}
}

// List handles GET /v1/clients?name=&tag=&level=
func (h *ClientHandler) List(c *gin.Context) {
	criteria, err := filter.ParseClientCriteria(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	clients, err := h.svc.List(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	out := make([]clientResponse, 0, len(clients))
	for _, cl := range clients {
		out = append(out, toClientResponse(cl))
	}
	ok(c, out)
}

// Create handles POST /v1/clients
func (h *ClientHandler) Create(c *gin.Context) {
	var req service.ClientInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	client, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, toClientResponse(*client))
}

// Get handles GET /v1/clients/:id
func (h *ClientHandler) Get(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}

	client, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, toClientResponse(*client))
}

// Update handles PUT /v1/clients/:id
func (h *ClientHandler) Update(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}
	var req service.ClientInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	client, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, toClientResponse(*client))
}

// Delete handles DELETE /v1/clients/:id
func (h *ClientHandler) Delete(c *gin.Context) {
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

// AddHistory handles POST /v1/clients/:id/history
func (h *ClientHandler) AddHistory(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}
	var req service.HistoryInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	entry, err := h.svc.AddHistory(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// AddTask handles POST /v1/clients/:id/tasks
func (h *ClientHandler) AddTask(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}
	var req service.TaskInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	task, err := h.svc.AddTask(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

type updateTaskRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// UpdateTask handles PATCH /v1/tasks/:id
func (h *ClientHandler) UpdateTask(c *gin.Context) {
	id, valid := pathID(c, h.logger, "id")
	if !valid {
		return
	}
	var req updateTaskRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	task, err := h.svc.SetTaskCompleted(c.Request.Context(), id, *req.Completed)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, task)
}
