package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/clientdesk/internal/guard"
	"github.com/lalith-99/clientdesk/internal/middleware"
	"github.com/lalith-99/clientdesk/internal/observ"
	"github.com/lalith-99/clientdesk/internal/service"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Health(ctx context.Context) error
}

// Deps is everything the router needs. Pinger and Live may be nil.
type Deps struct {
	Clients   *service.ClientService
	Tags      *service.TagService
	Marketing *service.MarketingService
	Dashboard *service.DashboardService
	Locker    guard.Locker
	LockTTL   time.Duration
	Pinger    Pinger
	Live      http.Handler
	Logger    *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), observ.GinLogger(d.Logger))

	r.GET("/v1/health", func(c *gin.Context) {
		if d.Pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := d.Pinger.Health(ctx); err != nil {
				d.Logger.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if d.Live != nil {
		r.GET("/v1/live", gin.WrapH(d.Live))
	}

	clients := NewClientHandler(d.Clients, d.Logger)
	tags := NewTagHandler(d.Tags, d.Logger)
	marketing := NewMarketingHandler(d.Marketing, d.Logger)
	dash := NewDashboardHandler(d.Dashboard, d.Logger)

	v1 := r.Group("/v1")
	if d.Locker != nil {
		v1.Use(middleware.SingleFlight(d.Locker, d.LockTTL, d.Logger))
	}

	v1.GET("/clients", clients.List)
	v1.POST("/clients", clients.Create)
	v1.GET("/clients/:id", clients.Get)
	v1.PUT("/clients/:id", clients.Update)
	v1.DELETE("/clients/:id", clients.Delete)
	v1.POST("/clients/:id/history", clients.AddHistory)
	v1.POST("/clients/:id/tasks", clients.AddTask)
	v1.PATCH("/tasks/:id", clients.UpdateTask)

	v1.GET("/tags", tags.List)
	v1.POST("/tags", tags.Create)
	v1.PUT("/tags/:id", tags.Rename)
	v1.DELETE("/tags/:id", tags.Delete)

	v1.GET("/marketing", marketing.List)
	v1.POST("/marketing/assign", marketing.Assign)
	v1.POST("/marketing/webhook", marketing.SendWebhook)

	v1.GET("/dashboard", dash.Overview)
	v1.GET("/dashboard/:metric", dash.DrillDown)
	v1.GET("/calendar", dash.Calendar)

	v1.POST("/view/transition", Transition(d.Logger))

	return r
}
