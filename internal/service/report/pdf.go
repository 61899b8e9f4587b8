package report

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"RiskReturn/internal/domain/models"
	applogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"

	"github.com/go-pdf/fpdf"
)

var ErrEmptyReport = errors.New("report has no rows")

// chart area on an A4 portrait page, in mm
const (
	chartLeft   = 30.0
	chartWidth  = 150.0
	chartHeight = 100.0
	pointRadius = 1.2
)

// Service renders analysis reports as PDF documents.
type Service struct {
	log *applogger.Logger
}

func NewService(l *applogger.Logger) *Service {
	if l == nil {
		l = applogger.Nop()
	}
	return &Service{log: l.Component("report")}
}

// Title is the chart title used by every presentation of a report.
func Title(r *models.AnalysisReport) string {
	return fmt.Sprintf("Period return vs. annualized volatility (%s)", r.PeriodLabel)
}

// RenderPDF lays out the results table followed by the scatter chart and,
// when a fit exists, the dashed regression line.
func (s *Service) RenderPDF(r *models.AnalysisReport) ([]byte, error) {
	if r == nil || len(r.Rows) == 0 {
		return nil, ErrEmptyReport
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(Title(r), false)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, Title(r), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("%s to %s, provider %s",
		util.FormatDate(r.Start), util.FormatDate(r.End), r.Provider), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeTable(pdf, r)
	writeFailures(pdf, r)

	pdf.Ln(6)
	if pdf.GetY()+chartHeight+20 > 282 {
		pdf.AddPage()
	}
	writeChart(pdf, r, pdf.GetY()+4)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		s.log.Error("render pdf failed", applogger.Error(err))
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	s.log.Debug("pdf rendered",
		applogger.Int("rows", len(r.Rows)),
		applogger.Int("bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func writeTable(pdf *fpdf.Fpdf, r *models.AnalysisReport) {
	widths := []float64{40, 50, 60}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Asset", "Period return", "Annualized volatility"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range r.Rows {
		pdf.CellFormat(widths[0], 6, row.Ticker, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 6, Percent(row.PeriodReturn), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 6, Percent(row.AnnualizedVolatility), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
}

func writeFailures(pdf *fpdf.Fpdf, r *models.AnalysisReport) {
	if len(r.Failures) == 0 && r.RegressionError == nil {
		return
	}
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(160, 0, 0)
	for _, f := range r.Failures {
		ticker := f.Ticker
		if ticker == "" {
			ticker = "(empty)"
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("Skipped %s: %s", ticker, f.Reason), "", 1, "L", false, 0, "")
	}
	if r.RegressionError != nil {
		pdf.CellFormat(0, 5, "No regression line: "+r.RegressionError.Message, "", 1, "L", false, 0, "")
	}
	pdf.SetTextColor(0, 0, 0)
}

func writeChart(pdf *fpdf.Fpdf, r *models.AnalysisReport, top float64) {
	xs, ys := r.Volatilities(), r.Returns()
	xMin, xMax := minMax(xs)

	// the line spans the observed volatilities and may leave the point cloud
	var lineY [2]float64
	yRange := ys
	if r.Regression != nil {
		lineY[0], lineY[1] = r.Regression.Predict(xMin), r.Regression.Predict(xMax)
		yRange = append(append([]float64{}, ys...), lineY[:]...)
	}
	lineX := [2]float64{xMin, xMax}

	yMin, yMax := minMax(yRange)
	xMin, xMax = pad(xMin, xMax)
	yMin, yMax = pad(yMin, yMax)

	px := func(x float64) float64 { return chartLeft + (x-xMin)/(xMax-xMin)*chartWidth }
	py := func(y float64) float64 { return top + chartHeight - (y-yMin)/(yMax-yMin)*chartHeight }

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	pdf.Rect(chartLeft, top, chartWidth, chartHeight, "D")

	pdf.SetFont("Helvetica", "", 7)
	for i := 0; i <= 4; i++ {
		f := float64(i) / 4
		x := xMin + f*(xMax-xMin)
		y := yMin + f*(yMax-yMin)
		pdf.Text(px(x)-4, top+chartHeight+4, Percent(x))
		pdf.Text(chartLeft-13, py(y)+1, Percent(y))
	}
	pdf.SetFont("Helvetica", "", 8)
	pdf.Text(chartLeft+chartWidth/2-15, top+chartHeight+9, "Annualized volatility")
	pdf.TransformBegin()
	pdf.TransformRotate(90, chartLeft-16, top+chartHeight/2+10)
	pdf.Text(chartLeft-16, top+chartHeight/2+10, "Period return")
	pdf.TransformEnd()

	pdf.SetFillColor(31, 119, 180)
	pdf.SetAlpha(0.8, "Normal")
	for i := range xs {
		pdf.Circle(px(xs[i]), py(ys[i]), pointRadius, "F")
	}
	pdf.SetAlpha(1, "Normal")
	for i, label := range r.Labels() {
		w := pdf.GetStringWidth(label)
		pdf.Text(px(xs[i])-w/2, py(ys[i])-2, label)
	}

	if r.Regression != nil {
		pdf.SetDrawColor(220, 0, 0)
		pdf.SetLineWidth(0.4)
		pdf.SetDashPattern([]float64{2, 1.5}, 0)
		pdf.Line(px(lineX[0]), py(lineY[0]), px(lineX[1]), py(lineY[1]))
		pdf.SetDashPattern([]float64{}, 0)
		pdf.SetDrawColor(0, 0, 0)
		pdf.SetTextColor(220, 0, 0)
		pdf.Text(chartLeft+2, top+5, fmt.Sprintf("Regression line: y = %.4f x %+.4f",
			r.Regression.Slope, r.Regression.Intercept))
		pdf.SetTextColor(0, 0, 0)
	}
}

// Percent formats a fraction as a percentage with two decimals.
func Percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func minMax(v []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range v {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

func pad(lo, hi float64) (float64, float64) {
	span := hi - lo
	if span == 0 {
		span = math.Max(math.Abs(lo), 0.1)
	}
	return lo - span*0.1, hi + span*0.1
}
