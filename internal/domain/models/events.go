package models

import (
	"time"

	"github.com/google/uuid"
)

const EventAnalysisCompleted = "analysis.completed"

// AnalysisCompletedEvent is published after every successful run.
type AnalysisCompletedEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Tickers     []string        `json:"tickers"`
	Period      string          `json:"period"`
	Provider    string          `json:"provider"`
	Rows        int             `json:"rows"`
	Failures    int             `json:"failures"`
	Regression  *RegressionLine `json:"regression,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	DurationMs  int64           `json:"duration_ms"`
}

// NewAnalysisCompletedEvent summarizes a report.
func NewAnalysisCompletedEvent(r *AnalysisReport, took time.Duration) *AnalysisCompletedEvent {
	return &AnalysisCompletedEvent{
		ID:          uuid.NewString(),
		Type:        EventAnalysisCompleted,
		Tickers:     r.Tickers,
		Period:      r.PeriodKey,
		Provider:    r.Provider,
		Rows:        len(r.Rows),
		Failures:    len(r.Failures),
		Regression:  r.Regression,
		GeneratedAt: r.GeneratedAt,
		DurationMs:  took.Milliseconds(),
	}
}
