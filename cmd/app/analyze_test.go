package main

import (
	"bytes"
	"testing"
	"time"

	"RiskReturn/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

func TestWriteTable(t *testing.T) {
	r := &models.AnalysisReport{
		PeriodLabel: "Last month",
		Start:       time.Date(2024, 5, 16, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		Rows: []models.AnalysisRow{
			{Ticker: "SPY", PeriodReturn: 0.0312, AnnualizedVolatility: 0.1104},
		},
		Failures:        []models.AssetFailure{{Ticker: "ZZZZ", Reason: models.ReasonUnknownTicker}},
		RegressionError: &models.RegressionError{Code: "ERR_TOO_FEW_POINTS", Message: "need at least 2 points"},
	}

	var buf bytes.Buffer
	writeTable(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Period return vs. annualized volatility (Last month)")
	assert.Contains(t, out, "2024-05-16 to 2024-06-15")
	assert.Contains(t, out, "Annualized volatility")
	assert.Contains(t, out, "3.12%")
	assert.Contains(t, out, "11.04%")
	assert.Contains(t, out, `skipped "ZZZZ": unknown_ticker`)
	assert.Contains(t, out, "no regression line: need at least 2 points")
}
