package server

import (
	"time"

	"github.com/brettbedarf/webterm/internal/util"
	"github.com/labstack/echo/v4"
)

// RequestLogger returns an echo middleware that logs requests with zerolog.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			logger := util.GetLogger("HTTP")
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()
			logger.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("ip", c.RealIP()).
				Int64("bytes_out", res.Size).
				Msg("Request")

			return err
		}
	}
}
