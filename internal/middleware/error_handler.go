package middleware

import (
	"errors"
	"net/http"
	"time"

	"taskmanager/internal/apierror"
	"taskmanager/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const internalErrorMsg = "Error interno del servidor"

// ErrorHandler logs errors that handlers attached with c.Error, including the
// store failure behind an upstream apierror, and answers 500 if nothing was
// written yet. Causes never reach the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		evt := withCaller(c, log.Error()).
			Str("route", c.FullPath()).
			Str("method", c.Request.Method)
		var apiErr *apierror.Error
		if errors.As(err, &apiErr) {
			evt = evt.Str("kind", apiErr.Kind.String()).Str("msg", apiErr.Msg)
			if apiErr.Err != nil {
				err = apiErr.Err
			}
		}
		evt.Err(err).Msg("request failed")

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorMsg))
	}
}

// Recovery turns a panic into a 500 and logs the route it happened on.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				withCaller(c, log.Error()).
					Str("route", c.FullPath()).
					Interface("panic", r).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New(internalErrorMsg))
			}
		}()
		c.Next()
	}
}

// Logger writes one line per request. 5xx log at error level, 4xx at warn,
// health probes at debug.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var evt *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			evt = log.Error()
		case status >= http.StatusBadRequest:
			evt = log.Warn()
		case c.Request.URL.Path == "/health":
			evt = log.Debug()
		default:
			evt = log.Info()
		}
		withCaller(c, evt).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// withCaller adds the request id and, on authenticated routes, the user id.
func withCaller(c *gin.Context, evt *zerolog.Event) *zerolog.Event {
	evt = evt.Str("request_id", c.GetString(RequestIDKey))
	if v, ok := c.Get(ClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			evt = evt.Str("user_id", claims.ID)
		}
	}
	return evt
}
