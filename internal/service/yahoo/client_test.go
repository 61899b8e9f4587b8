package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spyChart = `{"chart":{"result":[{
  "meta":{"symbol":"SPY","currency":"USD","gmtoffset":-14400},
  "timestamp":[1717767000,1718026200,1718112600],
  "indicators":{
    "quote":[{"close":[534.0,535.0,536.0]}],
    "adjclose":[{"adjclose":[530.5,null,532.1]}]
  }}],"error":null}}`

const qqqChartNoAdj = `{"chart":{"result":[{
  "meta":{"symbol":"QQQ","gmtoffset":-14400},
  "timestamp":[1717767000,1718026200],
  "indicators":{"quote":[{"close":[460.1,461.2]}]}}],"error":null}}`

const notFound = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

var (
	start = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end   = time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
)

func TestFetchAdjustedClose_DecodesChart(t *testing.T) {
	var gotQuery string
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v8/finance/chart/SPY":
			gotQuery = r.URL.RawQuery
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			_, _ = w.Write([]byte(spyChart))
		case "/v8/finance/chart/QQQ":
			_, _ = w.Write([]byte(qqqChartNoAdj))
		default:
			http.NotFound(w, r)
		}
	})

	c := New(srv.URL)
	table, err := c.FetchAdjustedClose(context.Background(), []string{"SPY", "QQQ"}, start, end)
	require.NoError(t, err)

	assert.Contains(t, gotQuery, "interval=1d")
	assert.Contains(t, gotQuery, "period1=1717200000")
	assert.Contains(t, gotQuery, "period2=1718409600")

	require.Len(t, table.Dates, 3)
	assert.Equal(t, "2024-06-07", table.Dates[0].Format("2006-01-02"))
	assert.Equal(t, "2024-06-11", table.Dates[2].Format("2006-01-02"))

	spy, ok := table.Column("SPY")
	require.True(t, ok)
	assert.InDelta(t, 530.5, spy[0].Float64, 1e-9)
	assert.False(t, spy[1].Valid)
	assert.InDelta(t, 532.1, spy[2].Float64, 1e-9)

	// falls back to quote.close and is absent on the date it lacks
	qqq, ok := table.Column("QQQ")
	require.True(t, ok)
	assert.InDelta(t, 460.1, qqq[0].Float64, 1e-9)
	assert.True(t, qqq[1].Valid)
	assert.False(t, qqq[2].Valid)
}

func TestFetchAdjustedClose_UnknownSymbolIsMissingColumn(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/SPY"):
			_, _ = w.Write([]byte(spyChart))
		case strings.HasSuffix(r.URL.Path, "/NOPE"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(notFound))
		default:
			_, _ = w.Write([]byte(notFound))
		}
	})

	c := New(srv.URL)
	table, err := c.FetchAdjustedClose(context.Background(), []string{"SPY", "NOPE", "GONE", ""}, start, end)
	require.NoError(t, err)

	_, ok := table.Column("NOPE")
	assert.False(t, ok)
	_, ok = table.Column("GONE")
	assert.False(t, ok)
	assert.Equal(t, []string{"SPY"}, table.Tickers())
}

func TestFetchAdjustedClose_ServerErrorAborts(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	})

	c := New(srv.URL)
	_, err := c.FetchAdjustedClose(context.Background(), []string{"SPY"}, start, end)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetch))
}

func TestFetchAdjustedClose_DeduplicatesRequests(t *testing.T) {
	calls := 0
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(spyChart))
	})

	c := New(srv.URL)
	_, err := c.FetchAdjustedClose(context.Background(), []string{"SPY", "SPY"}, start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFetchAdjustedClose_CancelledContext(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(spyChart))
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL)
	_, err := c.FetchAdjustedClose(ctx, []string{"SPY"}, start, end)
	assert.ErrorIs(t, err, ErrFetch)
}
