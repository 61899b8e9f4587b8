package yahoo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"RiskReturn/internal/domain/models"
	"RiskReturn/internal/service/ratelimit"
	"RiskReturn/pkg/breaker"
	xhttp "RiskReturn/pkg/http"
	"RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"

	"github.com/guregu/null/v6"
)

const (
	ProviderName   = "yahoo"
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	limiterKey     = "yahoo"
)

// ErrFetch wraps every failure that should abort a run.
var ErrFetch = errors.New("yahoo fetch failed")

// errUnknownSymbol marks a symbol Yahoo has no data for. It never leaves the
// package: such symbols are just missing from the table.
var errUnknownSymbol = errors.New("unknown symbol")

// Client implements repository.PriceProvider over the public chart API.
type Client struct {
	http    *xhttp.Client
	baseURL string
	limiter *ratelimit.Limiter
	breaker *breaker.Breaker
	log     *logger.Logger
}

type Option func(*Client)

func WithLimiter(l *ratelimit.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithBreaker(b *breaker.Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func WithHTTPClient(hc *xhttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = xhttp.NewClient(xhttp.WithTimeout(20*time.Second), xhttp.WithUserAgent("Mozilla/5.0"))
	}
	if c.breaker == nil {
		c.breaker = breaker.New(breaker.Settings{
			Name:         ProviderName,
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
			IsSuccessful: IsSuccessful,
		}, c.log)
	}
	return c
}

// IsSuccessful tells the breaker which outcomes are healthy upstream responses.
func IsSuccessful(err error) bool {
	return err == nil || errors.Is(err, errUnknownSymbol)
}

func (c *Client) Name() string { return ProviderName }

// FetchAdjustedClose fetches each distinct symbol in turn. Unknown symbols and
// empty entries get no column; any other failure aborts with ErrFetch.
func (c *Client) FetchAdjustedClose(ctx context.Context, tickers []string, start, end time.Time) (*models.PriceTable, error) {
	series := make(map[string][]models.PricePoint, len(tickers))

	for _, ticker := range tickers {
		if ticker == "" {
			continue
		}
		if _, done := series[ticker]; done {
			continue
		}

		points, err := c.fetchSeries(ctx, ticker, start, end)
		if errors.Is(err, errUnknownSymbol) {
			c.log.Info("symbol not found", logger.String("ticker", ticker))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrFetch, ticker, err)
		}
		series[ticker] = points
	}

	return models.NewPriceTable(series), nil
}

func (c *Client) fetchSeries(ctx context.Context, symbol string, start, end time.Time) ([]models.PricePoint, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, limiterKey); err != nil {
			return nil, err
		}
	}

	var resp chartResponse
	err := c.breaker.Do(func() error {
		err := c.http.SendAndParse(ctx, &xhttp.RequestOptions{
			Method: xhttp.MethodGet,
			URL:    c.baseURL + "/v8/finance/chart/" + url.PathEscape(symbol),
			QueryParams: map[string][]string{
				"period1":  {strconv.FormatInt(start.Unix(), 10)},
				"period2":  {strconv.FormatInt(end.Unix(), 10)},
				"interval": {"1d"},
				"events":   {"div,splits"},
			},
		}, &resp)
		var se *xhttp.StatusError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return errUnknownSymbol
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if e := resp.Chart.Error; e != nil {
		if isNotFound(e) {
			return nil, errUnknownSymbol
		}
		return nil, fmt.Errorf("api error %s: %s", e.Code, e.Description)
	}
	if len(resp.Chart.Result) == 0 || len(resp.Chart.Result[0].Timestamp) == 0 {
		return nil, errUnknownSymbol
	}

	return toPoints(&resp.Chart.Result[0]), nil
}

func isNotFound(e *chartError) bool {
	return strings.EqualFold(e.Code, "Not Found") ||
		strings.Contains(strings.ToLower(e.Description), "no data found")
}

// toPoints keys every bar by its exchange-local calendar date so series
// from different symbols align.
func toPoints(r *chartResult) []models.PricePoint {
	closes := r.closes()
	points := make([]models.PricePoint, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		day := util.TruncateDay(time.Unix(ts+r.Meta.GMTOffset, 0).UTC())
		var price null.Float
		if closes != nil {
			price = null.FloatFromPtr(closes[i])
		}
		points[i] = models.PricePoint{Date: day, Price: price}
	}
	return points
}
