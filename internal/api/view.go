package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/view"
	"go.uber.org/zap"
)

type transitionRequest struct {
	Mode  view.Mode  `json:"mode"`
	Event view.Event `json:"event" binding:"required"`
}

// Transition handles POST /v1/view/transition. It lets a detail screen ask
// which mode an event leads to without keeping its own copy of the table.
// An empty mode means viewing.
func Transition(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if !bindJSON(c, logger, &req) {
			return
		}
		if req.Mode == "" {
			req.Mode = view.Viewing
		}

		next, err := view.Next(req.Mode, req.Event)
		if errors.Is(err, view.ErrInvalidTransition) {
			respondError(c, logger, apperrors.Conflict(err.Error()))
			return
		}
		ok(c, gin.H{"mode": next})
	}
}
