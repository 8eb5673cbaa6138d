package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"WaveScan/internal/domain/models"
	"WaveScan/internal/service/ratelimit"
	xhttp "WaveScan/pkg/http"
	applogger "WaveScan/pkg/logger"
	"WaveScan/pkg/util"
)

// ErrorRecorder is the slice of the metrics recorder these middlewares need.
type ErrorRecorder interface {
	RecordError(kind string)
}

// SecretPresented reports whether either the "Authorization: Bearer" token or ?secret=
// matches secret exactly. A wrong bearer does not hide a correct query secret.
func SecretPresented(c echo.Context, secret string) bool {
	if token, ok := strings.CutPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "); ok &&
		util.SecretMatches(secret, token) {
		return true
	}
	return util.SecretMatches(secret, c.QueryParam("secret"))
}

// RequireSecret rejects requests that do not present secret. An empty secret leaves the
// route open.
func RequireSecret(secret string, metrics ErrorRecorder, l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !SecretPresented(c, secret) {
				metrics.RecordError(string(models.ErrKindAuth))
				l.Warn("scan trigger rejected",
					applogger.String("remote_ip", c.RealIP()),
					applogger.String("route", c.Path()),
				)
				return xhttp.AppErrorResponse(c, xhttp.UnauthorizedError("invalid or missing secret"))
			}
			return next(c)
		}
	}
}

// RateLimit answers 429 once a client IP has used up its tokens.
func RateLimit(lim *ratelimit.Limiter, metrics ErrorRecorder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !lim.Allow(c.RealIP()) {
				metrics.RecordError("rate_limited")
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many scan requests"))
			}
			return next(c)
		}
	}
}
