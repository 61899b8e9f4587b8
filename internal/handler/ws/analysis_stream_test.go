package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/usecase"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	report *models.AnalysisReport
	err    error
}

func (s *stubAnalyzer) AnalyzeWithProgress(_ context.Context, req models.AnalysisRequest, progress usecase.ProgressFunc) (*models.AnalysisReport, error) {
	tickers := usecase.ParseTickers(req.Tickers)
	for i, t := range tickers {
		progress(models.Progress{Ticker: t, Index: i + 1, Total: len(tickers), OK: true})
	}
	return s.report, s.err
}

type frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, a ProgressAnalyzer) *websocket.Conn {
	t.Helper()
	e := echo.New()
	NewAnalysisStreamHandler(nil, a, models.AnalysisRequest{Tickers: "SPY", Period: "1y"}, nil).RegisterRoutes(e)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws/analysis", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	return conn
}

func read(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestStream_ProgressThenReport(t *testing.T) {
	report := &models.AnalysisReport{PeriodKey: "1m", Rows: []models.AnalysisRow{{Ticker: "AAA"}, {Ticker: "BBB"}}}
	conn := dial(t, &stubAnalyzer{report: report})

	require.NoError(t, conn.WriteJSON(map[string]string{"tickers": "AAA,BBB", "period": "1m"}))

	for i := 1; i <= 2; i++ {
		f := read(t, conn)
		require.Equal(t, MessageProgress, f.Type)
		var p models.Progress
		require.NoError(t, json.Unmarshal(f.Data, &p))
		assert.Equal(t, i, p.Index)
		assert.Equal(t, 2, p.Total)
	}

	f := read(t, conn)
	require.Equal(t, MessageReport, f.Type)
	var got models.AnalysisReport
	require.NoError(t, json.Unmarshal(f.Data, &got))
	assert.Equal(t, "1m", got.PeriodKey)
	assert.Len(t, got.Rows, 2)
}

func TestStream_DefaultsApplyPerMessage(t *testing.T) {
	conn := dial(t, &stubAnalyzer{report: &models.AnalysisReport{}})

	require.NoError(t, conn.WriteJSON(map[string]string{}))
	f := read(t, conn)
	require.Equal(t, MessageProgress, f.Type)
	assert.Contains(t, string(f.Data), `"ticker":"SPY"`)
	assert.Equal(t, MessageReport, read(t, conn).Type)
}

func TestStream_ErrorFrame(t *testing.T) {
	conn := dial(t, &stubAnalyzer{err: usecase.ErrFetchFailed})

	require.NoError(t, conn.WriteJSON(map[string]string{"tickers": "AAA"}))
	assert.Equal(t, MessageProgress, read(t, conn).Type)

	f := read(t, conn)
	require.Equal(t, MessageError, f.Type)
	assert.Contains(t, string(f.Data), "ERR_FETCH_FAILED")
}

func TestStream_BadFrame(t *testing.T) {
	conn := dial(t, &stubAnalyzer{})

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	f := read(t, conn)
	require.Equal(t, MessageError, f.Type)
	assert.Contains(t, string(f.Data), "ERR_BAD_REQUEST")

	// connection stays usable
	require.NoError(t, conn.WriteJSON(map[string]string{"as_of": "yesterday"}))
	f = read(t, conn)
	require.Equal(t, MessageError, f.Type)
	assert.Contains(t, string(f.Data), "ERR_DATETIME")
}
