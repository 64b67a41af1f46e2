package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cristianadrielbraun/qrultimate/internal/logger"
	"github.com/cristianadrielbraun/qrultimate/internal/studio"
)

const (
	// HeaderRequestID carries the request id on responses, and on requests
	// when an upstream proxy already assigned one.
	HeaderRequestID = "X-Request-ID"
	// SessionCookie names the browser session of the studio.
	SessionCookie = "qr_session"

	sessionIDKey  = "session_id"
	controllerKey = "controller"
)

// RequestLogger tags each request with an id and logs its outcome.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		ctx := logger.WithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Header(HeaderRequestID, requestID)

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String(logger.ErrorKey, c.Errors.String()))
		}

		l := logger.Ctx(ctx)
		switch {
		case status >= http.StatusInternalServerError:
			l.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			l.Warn("request completed", fields...)
		default:
			l.Info("request completed", fields...)
		}
	}
}

// Sessions resolves the studio controller of the caller, issuing a session
// cookie on first contact.
func (h *Handler) Sessions() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(id) != nil {
			id = studio.NewSessionID()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, 0, "/", "", c.Request.TLS != nil, true)
		}

		ctrl, err := h.store.Session(c.Request.Context(), id)
		if err != nil {
			logger.Ctx(c.Request.Context()).Error("open session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to open session"})
			return
		}
		c.Set(sessionIDKey, id)
		c.Set(controllerKey, ctrl)
		c.Next()
	}
}

func controller(c *gin.Context) *studio.Controller {
	return c.MustGet(controllerKey).(*studio.Controller)
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}
