package api

import (
	"context"
	"errors"
	"net/http"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/usecase"
	xhttp "RiskReturn/pkg/http"
)

// ErrorFor maps an analyzer error to the HTTP error shown to the user. The
// report may be nil; when present its per-asset failures are attached.
func ErrorFor(err error, report *models.AnalysisReport) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, usecase.ErrFetchFailed):
		return xhttp.BadGatewayError("ERR_FETCH_FAILED", "could not download prices from the data provider").WithError(err)
	case errors.Is(err, usecase.ErrNoUsableAssets):
		e := xhttp.UnprocessableError("ERR_NO_USABLE_ASSETS", "none of the requested tickers produced usable data").WithError(err)
		if report != nil {
			e.WithParam("failures", report.Failures)
		}
		return e
	case errors.Is(err, context.DeadlineExceeded):
		return xhttp.NewAppError("ERR_TIMEOUT", "", "analysis timed out", http.StatusGatewayTimeout).WithError(err)
	default:
		return xhttp.InternalError("analysis failed").WithError(err)
	}
}
