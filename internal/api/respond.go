package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"go.uber.org/zap"
)

// respondError writes err as {"error": {"code", "message", "details"}}.
// Unexpected errors are logged and hidden behind INTERNAL.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	if errors.Is(err, context.Canceled) {
		// Client went away; nobody is reading the response.
		c.Status(499)
		return
	}

	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		logger.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		appErr = apperrors.ErrInternal
	}

	status := appErr.HTTPStatus()
	if status >= 500 {
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("code", string(appErr.Code)),
			zap.Error(err),
		)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": appErr})
}

// pathID parses the named path parameter as a uuid and writes a 400 if it
// is not one.
func pathID(c *gin.Context, logger *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, logger, apperrors.Validation("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into dst and writes a 400 on malformed JSON.
// Field rules are checked by the services.
func bindJSON(c *gin.Context, logger *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, logger, apperrors.Validation("invalid request body").WithCause(err))
		return false
	}
	return true
}

func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
