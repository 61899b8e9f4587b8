package web

import (
	"sort"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/service/report"
)

// Plotly figure, serialized into the page by html/template.
type figure struct {
	Data   []trace `json:"data"`
	Layout layout  `json:"layout"`
}

type trace struct {
	X            []float64 `json:"x"`
	Y            []float64 `json:"y"`
	Text         []string  `json:"text,omitempty"`
	Mode         string    `json:"mode"`
	Type         string    `json:"type"`
	Name         string    `json:"name"`
	TextPosition string    `json:"textposition,omitempty"`
	Marker       *marker   `json:"marker,omitempty"`
	Line         *line     `json:"line,omitempty"`
}

type marker struct {
	Size    int     `json:"size"`
	Opacity float64 `json:"opacity"`
}

type line struct {
	Color string `json:"color"`
	Dash  string `json:"dash"`
}

type title struct {
	Text string `json:"text"`
}

type axis struct {
	Title      title  `json:"title"`
	TickFormat string `json:"tickformat"`
	ZeroLine   bool   `json:"zeroline"`
}

type layout struct {
	Title  title `json:"title"`
	Width  int   `json:"width"`
	Height int   `json:"height"`
	XAxis  axis  `json:"xaxis"`
	YAxis  axis  `json:"yaxis"`
}

// newFigure builds the scatter of return on volatility, labelled by ticker,
// plus the dashed regression line when one was fit.
func newFigure(r *models.AnalysisReport) figure {
	f := figure{
		Data: []trace{{
			X:            r.Volatilities(),
			Y:            r.Returns(),
			Text:         r.Labels(),
			Mode:         "markers+text",
			Type:         "scatter",
			Name:         "Assets",
			TextPosition: "top center",
			Marker:       &marker{Size: 12, Opacity: 0.8},
		}},
		Layout: layout{
			Title:  title{Text: report.Title(r)},
			Width:  800,
			Height: 600,
			XAxis:  axis{Title: title{Text: "Annualized volatility"}, TickFormat: ".0%"},
			YAxis:  axis{Title: title{Text: "Period return"}, TickFormat: ".0%", ZeroLine: true},
		},
	}

	if r.Regression != nil && len(r.Trend) > 0 {
		pts := make([]models.TrendPoint, len(r.Trend))
		copy(pts, r.Trend)
		sort.Slice(pts, func(i, j int) bool { return pts[i].X < pts[j].X })

		t := trace{Mode: "lines", Type: "scatter", Name: "Regression line", Line: &line{Color: "red", Dash: "dash"}}
		for _, p := range pts {
			t.X = append(t.X, p.X)
			t.Y = append(t.Y, p.Y)
		}
		f.Data = append(f.Data, t)
	}
	return f
}
