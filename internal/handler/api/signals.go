package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"WaveScan/internal/domain/models"
	"WaveScan/internal/middleware"
	"WaveScan/internal/service/ratelimit"
	"WaveScan/internal/usecase"
	xhttp "WaveScan/pkg/http"
	xlogger "WaveScan/pkg/logger"
)

// SnapshotSource serves the stored aggregate.
type SnapshotSource interface {
	Latest(ctx context.Context) (models.SnapshotView, error)
	Search(ctx context.Context, req models.SignalsSearchRequest) (models.SignalsSearchResponse, error)
}

// SignalsHandler exposes the dashboard read API and the manual scan trigger.
type SignalsHandler struct {
	logger   *xlogger.Logger
	snapshot SnapshotSource
	runner   usecase.ScanRunner
	metrics  middleware.ErrorRecorder
	secret   string
	limiter  *ratelimit.Limiter
}

func NewSignalsHandler(logger *xlogger.Logger, snapshot SnapshotSource, runner usecase.ScanRunner, metrics middleware.ErrorRecorder, secret string, limiter *ratelimit.Limiter) *SignalsHandler {
	return &SignalsHandler{
		logger:   logger,
		snapshot: snapshot,
		runner:   runner,
		metrics:  metrics,
		secret:   secret,
		limiter:  limiter,
	}
}

func (h *SignalsHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	g := e.Group("/api")
	g.GET("/signals", h.Latest)
	g.GET("/signals/search", h.Search)

	guard := []echo.MiddlewareFunc{
		middleware.RequireSecret(h.secret, h.metrics, h.logger),
		middleware.RateLimit(h.limiter, h.metrics),
	}
	g.GET("/scan", h.Scan, guard...)
	g.POST("/scan", h.Scan, guard...)
}

func (h *SignalsHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Latest returns the last snapshot as stored, with status "initializing" before the
// first cycle.
func (h *SignalsHandler) Latest(c echo.Context) error {
	view, err := h.snapshot.Latest(c.Request().Context())
	if err != nil {
		h.logger.Error("snapshot load error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("snapshot unavailable").WithError(err))
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return c.JSON(http.StatusOK, view)
}

func (h *SignalsHandler) Search(c echo.Context) error {
	req := &models.SignalsSearchRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	res, err := h.snapshot.Search(c.Request().Context(), *req)
	if err != nil {
		h.logger.Error("snapshot search error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("snapshot unavailable").WithError(err))
	}
	return c.JSON(http.StatusOK, res)
}

// Scan runs one cycle synchronously. The cycle is detached from the request so a
// dropped client does not abort it while it holds the scan lock.
func (h *SignalsHandler) Scan(c echo.Context) error {
	ctx := context.WithoutCancel(c.Request().Context())
	res, err := h.runner.Run(ctx, "http")
	if errors.Is(err, usecase.ErrScanInProgress) {
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("scan already in progress"))
	}
	if err != nil {
		h.logger.Error("manual scan failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("scan failed").WithError(err))
	}
	return c.JSON(http.StatusOK, models.ScanSummary{
		OK:        true,
		ID:        res.ID,
		Count:     res.SignalCount,
		Errors:    res.ErrorCount,
		UpdatedAt: res.GeneratedAt,
	})
}
