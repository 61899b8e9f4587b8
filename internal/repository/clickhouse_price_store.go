package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"RiskReturn/internal/domain/models"
	pkgch "RiskReturn/pkg/clickhouse"
	applogger "RiskReturn/pkg/logger"
	"RiskReturn/pkg/util"

	"github.com/guregu/null/v6"
)

const CHProviderName = "clickhouse"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CHPriceStore implements PriceProvider over a daily_prices table loaded by an
// external ingest job.
type CHPriceStore struct {
	db       *sql.DB
	database string
	l        *applogger.Logger
}

func NewCHPriceStore(ch *pkgch.Client, l *applogger.Logger) (*CHPriceStore, error) {
	if !identRe.MatchString(ch.Database()) {
		return nil, fmt.Errorf("invalid clickhouse database name %q", ch.Database())
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHPriceStore{db: ch.DB(), database: ch.Database(), l: l}, nil
}

// SchemaStatements creates the table the store reads from.
func SchemaStatements(database string) []string {
	return []string{
		fmt.Sprintf(`CREATE DATABASE IF NOT EXISTS %s`, database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.daily_prices (
            symbol    LowCardinality(String),
            d         Date,
            adj_close Nullable(Float64)
        ) ENGINE = ReplacingMergeTree
        ORDER BY (symbol, d)`, database),
	}
}

func (s *CHPriceStore) Name() string { return CHProviderName }

func (s *CHPriceStore) FetchAdjustedClose(ctx context.Context, tickers []string, start, end time.Time) (*models.PriceTable, error) {
	began := time.Now()
	symbols := distinctNonEmpty(tickers)
	if len(symbols) == 0 {
		return models.NewPriceTable(nil), nil
	}

	q, args := buildPriceQuery(s.database, symbols, start, end)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		s.l.Error("clickhouse daily_prices query error",
			applogger.Strings("symbols", symbols),
			applogger.Error(err),
		)
		return nil, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	series := make(map[string][]models.PricePoint, len(symbols))
	n := 0
	for rows.Next() {
		var (
			symbol string
			day    time.Time
			price  null.Float
		)
		if err := rows.Scan(&symbol, &day, &price); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		day = util.TruncateDay(day.UTC())
		series[symbol] = append(series[symbol], models.PricePoint{Date: day, Price: price})
		n++
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	s.l.Debug("clickhouse daily_prices ok",
		applogger.Int("symbols", len(symbols)),
		applogger.Int("rows", n),
		applogger.Duration("duration_ms", time.Since(began)),
	)
	return models.NewPriceTable(series), nil
}

func buildPriceQuery(database string, symbols []string, start, end time.Time) (string, []any) {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(symbols)), ", ")
	q := fmt.Sprintf(`
        SELECT symbol, d, adj_close
        FROM %s.daily_prices FINAL
        WHERE symbol IN (%s) AND d BETWEEN ? AND ?
        ORDER BY symbol, d`, database, placeholders)

	args := make([]any, 0, len(symbols)+2)
	for _, s := range symbols {
		args = append(args, s)
	}
	args = append(args, util.FormatDate(start), util.FormatDate(end))
	return q, args
}

func distinctNonEmpty(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
