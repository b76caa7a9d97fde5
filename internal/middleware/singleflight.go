package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/gin-gonic/gin"
	apperrors "github.com/lalith-99/clientdesk/internal/errors"
	"github.com/lalith-99/clientdesk/internal/guard"
	"go.uber.org/zap"
)

// IdempotencyHeader lets a caller scope the lock to one logical submission.
const IdempotencyHeader = "Idempotency-Key"

// maxHashedBody caps how much of a request body goes into the lock key.
const maxHashedBody = 1 << 20

// SingleFlight rejects a mutating request with 409 while an identical one
// is still running. Requests are identical when they share method, path and
// Idempotency-Key, or when there is no key, method, path and body. Safe
// methods pass straight through.
//
// If the locker errors (Redis down) the request runs unguarded.
func SingleFlight(locker guard.Locker, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key, err := lockKey(c.Request)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": apperrors.Validation("unreadable request body"),
			})
			return
		}

		lease, ok, err := locker.Acquire(c.Request.Context(), key, ttl)
		if err != nil {
			logger.Warn("mutation guard unavailable, continuing unguarded",
				zap.String("key", key),
				zap.Error(err),
			)
			c.Next()
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": apperrors.Conflict("request already in progress"),
			})
			return
		}
		defer func() {
			if err := lease.Release(context.WithoutCancel(c.Request.Context())); err != nil {
				logger.Warn("release mutation guard", zap.String("key", key), zap.Error(err))
			}
		}()

		c.Next()
	}
}

// lockKey builds the guard key for r. Without an Idempotency-Key the body is
// hashed and put back so the handler can still read it.
func lockKey(r *http.Request) (string, error) {
	key := r.Method + ":" + r.URL.Path
	if idem := r.Header.Get(IdempotencyHeader); idem != "" {
		return key + ":" + idem, nil
	}
	if r.Body == nil || r.Body == http.NoBody {
		return key, nil
	}

	head, err := io.ReadAll(io.LimitReader(r.Body, maxHashedBody))
	if err != nil {
		return "", err
	}
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(head), r.Body), r.Body}
	return key + "#" + strconv.FormatUint(xxhash.Sum64(head), 16), nil
}
