package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/clientdesk/internal/dashboard"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/service"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

type DashboardHandler struct {
	svc    *service.DashboardService
	logger *zap.Logger
	now    func() time.Time
}

func NewDashboardHandler(svc *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{svc: svc, logger: logger, now: time.Now}
}

// Overview handles GET /v1/dashboard
func (h *DashboardHandler) Overview(c *gin.Context) {
	ov, err := h.svc.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, ov)
}

// DrillDown handles GET /v1/dashboard/:metric
func (h *DashboardHandler) DrillDown(c *gin.Context) {
	metric, err := dashboard.ParseMetric(c.Param("metric"))
	if err != nil {
		respondError(c, h.logger, apperrors.NotFound(err.Error()))
		return
	}

	entries, err := h.svc.DrillDown(c.Request.Context(), metric)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, gin.H{"metric": metric, "count": len(entries), "clients": entries})
}

// Calendar handles GET /v1/calendar?from=YYYY-MM-DD&to=YYYY-MM-DD
//
// Without from, the window starts on the first day of the current month.
// Without to, it spans one month.
func (h *DashboardHandler) Calendar(c *gin.Context) {
	loc := h.svc.Location()
	now := h.now().In(loc)

	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
	if raw := c.Query("from"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			respondError(c, h.logger, apperrors.ValidationWithDetails("invalid query", map[string]string{"from": "must be YYYY-MM-DD"}))
			return
		}
		from = t
	}
	to := from.AddDate(0, 1, 0)
	if raw := c.Query("to"); raw != "" {
		t, err := time.ParseInLocation(dateLayout, raw, loc)
		if err != nil {
			respondError(c, h.logger, apperrors.ValidationWithDetails("invalid query", map[string]string{"to": "must be YYYY-MM-DD"}))
			return
		}
		to = t
	}
	if !to.After(from) {
		respondError(c, h.logger, apperrors.ValidationWithDetails("invalid query", map[string]string{"to": "must be after from"}))
		return
	}

	view, err := h.svc.Calendar(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	ok(c, view)
}
