package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"RiskReturn/internal/domain/models"
	domrepo "RiskReturn/internal/domain/repository"
	"RiskReturn/internal/service/metrics"
	"RiskReturn/internal/service/report"
	xhttp "RiskReturn/pkg/http"
	xlogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"

	"github.com/labstack/echo/v4"
)

// Analyzer runs one analysis. Implemented by usecase.Analyzer.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (*models.AnalysisReport, error)
}

// AnalysisEchoHandler serves the JSON and PDF views of an analysis.
type AnalysisEchoHandler struct {
	logger   *xlogger.Logger
	analyzer Analyzer
	pdf      *report.Service
	defaults models.AnalysisRequest
}

// NewAnalysisEchoHandler takes the request values used when a client omits
// tickers or period.
func NewAnalysisEchoHandler(logger *xlogger.Logger, analyzer Analyzer, pdf *report.Service, defaults models.AnalysisRequest) *AnalysisEchoHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	metrics.Register()
	return &AnalysisEchoHandler{
		logger:   logger.Component("api"),
		analyzer: analyzer,
		pdf:      pdf,
		defaults: defaults,
	}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.GET("/analysis", h.Analysis)
	g.POST("/analysis", h.Analysis)
	g.GET("/analysis/report.pdf", h.ReportPDF)
	g.GET("/periods", h.Periods)
}

func (h *AnalysisEchoHandler) Analysis(c echo.Context) error {
	const endpoint = "analysis"
	defer metrics.ObserveSince(endpoint, time.Now())

	res, appErr, verr := h.run(c)
	if verr != nil {
		metrics.CountError(endpoint, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}
	if appErr != nil {
		metrics.CountError(endpoint, appErr.Code)
		return xhttp.AppErrorResponse(c, appErr)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) ReportPDF(c echo.Context) error {
	const endpoint = "report_pdf"
	defer metrics.ObserveSince(endpoint, time.Now())

	res, appErr, verr := h.run(c)
	if verr != nil {
		metrics.CountError(endpoint, "ERR_VALIDATION")
		return xhttp.BadRequestResponse(c, verr)
	}
	if appErr != nil {
		metrics.CountError(endpoint, appErr.Code)
		return xhttp.AppErrorResponse(c, appErr)
	}

	b, err := h.pdf.RenderPDF(res)
	if err != nil {
		if errors.Is(err, report.ErrEmptyReport) {
			return xhttp.AppErrorResponse(c, xhttp.UnprocessableError("ERR_NO_USABLE_ASSETS", err.Error()))
		}
		h.logger.Error("pdf render error", xlogger.Error(err))
		metrics.CountError(endpoint, "ERR_INTERNAL")
		return xhttp.InternalServerErrorResponse(c)
	}

	name := fmt.Sprintf("riskreturn-%s-%s.pdf", res.PeriodKey, util.FormatDate(res.End))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, "application/pdf", b)
}

func (h *AnalysisEchoHandler) Periods(c echo.Context) error {
	periods := domrepo.Periods()
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=3600")
	return xhttp.ListResponse(c, periods, int64(len(periods)))
}

func (h *AnalysisEchoHandler) run(c echo.Context) (*models.AnalysisReport, *xhttp.AppError, []xhttp.ValidationError) {
	req := h.defaults
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		return nil, nil, verr
	}

	res, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		appErr := ErrorFor(err, res)
		if appErr.Status >= http.StatusInternalServerError {
			h.logger.Error("analysis usecase error", xlogger.Error(err))
		} else {
			h.logger.Info("analysis rejected", xlogger.String("code", appErr.Code))
		}
		return nil, appErr, nil
	}
	return res, nil, nil
}
