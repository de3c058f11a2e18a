package middleware

import (
	"bidding-system/pkg/logger"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const accessLogFormat = `{"time":"${time_rfc3339}","id":"${id}","remote_ip":"${remote_ip}","host":"${host}",` +
	`"method":"${method}","uri":"${uri}","user_agent":"${user_agent}","status":${status},"error":"${error}",` +
	`"latency":${latency},"latency_human":"${latency_human}","bytes_in":${bytes_in},"bytes_out":${bytes_out}}` + "\n"

// AccessLog writes one JSON line per request.
func AccessLog() echo.MiddlewareFunc {
	return echomw.LoggerWithConfig(echomw.LoggerConfig{
		Format: accessLogFormat,
	})
}

// RequestLogger logs every incoming request at debug level.
func RequestLogger(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			log.Debug("Request received",
				"method", req.Method,
				"path", req.URL.Path,
				"remote_addr", c.RealIP(),
				"origin", req.Header.Get("Origin"),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID))
			return next(c)
		}
	}
}
