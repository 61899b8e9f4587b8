package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testHandler struct{}

func (testHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ok", func(c echo.Context) error { return SuccessResponse(c, "fine") })
	e.GET("/boom", func(c echo.Context) error { panic("boom") })
	e.GET("/gone", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("no such thing").WithParam("id", 7))
	})
	e.GET("/oops", func(c echo.Context) error {
		return AppErrorResponse(c, echo.ErrTeapot)
	})
}

func do(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestServer_Routes(t *testing.T) {
	s := NewServer([]Handler{testHandler{}, nil})

	rec, body := do(t, s, "/ok")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fine", body.Data)

	rec, body = do(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, body.Data)

	rec, _ = do(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "riskreturn_http_requests_total")
}

func TestServer_RecoversPanics(t *testing.T) {
	s := NewServer([]Handler{testHandler{}})

	rec, body := do(t, s, "/boom")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
}

func TestAppErrorResponse(t *testing.T) {
	s := NewServer([]Handler{testHandler{}})

	rec, body := do(t, s, "/gone")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, body.Status)
	errs, ok := body.Data.([]interface{})
	require.True(t, ok)
	first := errs[0].(map[string]interface{})
	assert.Equal(t, "ERR_NOT_FOUND", first["code"])
	assert.Equal(t, float64(7), first["params"].(map[string]interface{})["id"])

	// anything that is not an AppError is hidden behind a generic 500
	rec, body = do(t, s, "/oops")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Something went wrong", body.Data)
}

func TestServer_MetricsDisabled(t *testing.T) {
	s := NewServer(nil, WithMetricsPath(""))
	rec, _ := do(t, s, "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
