package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/coursemarket-backend/internal/http/response"
	"github.com/yungbote/coursemarket-backend/internal/observability"
	"github.com/yungbote/coursemarket-backend/internal/platform/ctxutil"
	"github.com/yungbote/coursemarket-backend/internal/platform/logger"
)

const unmatchedRoute = "unmatched"

// quietRoutes are polled by infrastructure; successful hits log at debug.
var quietRoutes = map[string]bool{
	"/healthcheck": true,
	"/metrics":     true,
}

// Observe records one metrics sample and one log line per request. Both are
// keyed by the route template so /api/courses/:id stays a single series.
// Handlers that answer through response.RespondError also contribute their
// error code.
func Observe(log *logger.Logger, m *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.ApiInflightInc()
		defer m.ApiInflightDec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := c.Writer.Status()
		method := strings.ToUpper(c.Request.Method)
		dur := time.Since(start)
		code := c.GetString(response.ErrorCodeKey)

		m.ObserveAPI(method, route, strconv.Itoa(status), dur)
		if code != "" {
			m.ObserveAPIError(route, code)
		}
		if log == nil {
			return
		}

		fields := []interface{}{
			"client_ip", c.ClientIP(),
			"method", method,
			"route", route,
			"status", status,
			"duration_ms", dur.Milliseconds(),
		}
		if route == unmatchedRoute {
			fields = append(fields, "path", c.Request.URL.Path)
		}
		if code != "" {
			fields = append(fields, "error_code", code)
		}
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			fields = append(fields, "trace_id", td.TraceID, "request_id", td.RequestID)
		}
		if rd := ctxutil.GetRequestData(c.Request.Context()); rd != nil {
			fields = append(fields, "user_id", rd.UserID.String())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		case quietRoutes[route]:
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
