package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"attendance/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Recovery turns a panic into a 500 carrying the request id. The stack goes to the log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && err == http.ErrAbortHandler {
				panic(r)
			}
			id := c.GetString(RequestIDKey)
			log.Error().
				Str("request_id", id).
				Str("route", c.FullPath()).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal(id))
		}()
		c.Next()
	}
}

// AccessLog writes one line per request. 5xx log at error and 4xx at warn,
// tagged with the caller's user id once JWTAuth has run.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			ev = log.Error()
		case status >= http.StatusBadRequest:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev = ev.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start))
		if claims, ok := c.Value(ClaimsKey).(*JWTClaims); ok {
			ev = ev.Str("user_id", claims.UserID)
		}
		ev.Msg("request")
	}
}
