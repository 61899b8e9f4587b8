package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"RiskReturn/internal/domain/models"
	domrepo "RiskReturn/internal/domain/repository"
	"RiskReturn/internal/handler/api"
	"RiskReturn/internal/service/report"
	xhttp "RiskReturn/pkg/http"
	xlogger "RiskReturn/pkg/logger"

	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"percent": report.Percent,
}).ParseFS(templateFS, "templates/*.html"))

// PageHandler renders the form and the results page.
type PageHandler struct {
	logger   *xlogger.Logger
	analyzer api.Analyzer
	defaults models.AnalysisRequest
}

func NewPageHandler(logger *xlogger.Logger, analyzer api.Analyzer, defaults models.AnalysisRequest) *PageHandler {
	if logger == nil {
		logger = xlogger.Nop()
	}
	return &PageHandler{logger: logger.Component("web"), analyzer: analyzer, defaults: defaults}
}

type pageData struct {
	Tickers    string
	Period     string
	Periods    []domrepo.Period
	Report     *models.AnalysisReport
	Figure     *figure
	Error      *xhttp.AppError
	Validation []xhttp.ValidationError
}

func (h *PageHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Index)
	e.GET("/analyze", h.Analyze)
	e.POST("/analyze", h.Analyze)
}

// Index shows the empty form with the default tickers.
func (h *PageHandler) Index(c echo.Context) error {
	return h.render(c, http.StatusOK, h.newPage(h.defaults))
}

func (h *PageHandler) Analyze(c echo.Context) error {
	req := h.defaults
	if verr := xhttp.ReadAndValidateRequest(c, &req); verr != nil {
		data := h.newPage(req)
		data.Validation = verr
		return h.render(c, http.StatusBadRequest, data)
	}

	data := h.newPage(req)
	res, err := h.analyzer.Analyze(c.Request().Context(), req)
	data.Report = res
	if err != nil {
		data.Error = api.ErrorFor(err, res)
		if data.Error.Status >= http.StatusInternalServerError {
			h.logger.Error("analysis failed", xlogger.Error(err))
		}
		return h.render(c, data.Error.Status, data)
	}

	f := newFigure(res)
	data.Figure = &f
	return h.render(c, http.StatusOK, data)
}

func (h *PageHandler) newPage(req models.AnalysisRequest) *pageData {
	return &pageData{
		Tickers: req.Tickers,
		Period:  domrepo.ResolvePeriod(req.Period).Key,
		Periods: domrepo.Periods(),
	}
}

func (h *PageHandler) render(c echo.Context, status int, data *pageData) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		h.logger.Error("render page failed", xlogger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "render page failed")
	}
	return c.HTMLBlob(status, buf.Bytes())
}
