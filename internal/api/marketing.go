package api

import (
	"github.com/gin-gonic/gin"
	"github.com/lalith-99/clientdesk/internal/filter"
	"github.com/lalith-99/clientdesk/internal/service"
	"go.uber.org/zap"
)

type MarketingHandler struct {
	svc    *service.MarketingService
	logger *zap.Logger
}

func NewMarketingHandler(svc *service.MarketingService, logger *zap.Logger) *MarketingHandler {
	return &MarketingHandler{svc: svc, logger: logger}
}

// List handles GET /v1/marketing?name=&first_name=&phone=&tag=&message=
func (h *MarketingHandler) List(c *gin.Context) {
	criteria, err := filter.ParseMarketingCriteria(c.Request.URL.Query())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	messages, err := h.svc.List(c.Request.Context(), criteria)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, messages)
}

// Assign handles POST /v1/marketing/assign
func (h *MarketingHandler) Assign(c *gin.Context) {
	var req service.AssignInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	n, err := h.svc.Assign(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, gin.H{"updated": n})
}

// SendWebhook handles POST /v1/marketing/webhook
func (h *MarketingHandler) SendWebhook(c *gin.Context) {
	var req service.WebhookInput
	if !bindJSON(c, h.logger, &req) {
		return
	}

	sent, err := h.svc.SendToWebhook(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, gin.H{"sent": sent})
}
