package models

import (
	"sort"
	"time"

	"github.com/guregu/null/v6"
)

// PricePoint is one adjusted close. An invalid Price means the provider had
// no observation for that date.
type PricePoint struct {
	Date  time.Time  `json:"date"`
	Price null.Float `json:"price"`
}

// PriceTable holds adjusted closes aligned on a shared date index, one column
// per ticker. A ticker the provider does not know has no column.
type PriceTable struct {
	Dates   []time.Time             `json:"dates"`
	Columns map[string][]null.Float `json:"columns"`
}

// NewPriceTable aligns per-ticker series on the union of their dates.
func NewPriceTable(series map[string][]PricePoint) *PriceTable {
	seen := make(map[int64]time.Time)
	for _, points := range series {
		for _, p := range points {
			seen[p.Date.Unix()] = p.Date
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	index := make(map[int64]int, len(dates))
	for i, d := range dates {
		index[d.Unix()] = i
	}

	columns := make(map[string][]null.Float, len(series))
	for ticker, points := range series {
		col := make([]null.Float, len(dates))
		for _, p := range points {
			col[index[p.Date.Unix()]] = p.Price
		}
		columns[ticker] = col
	}

	return &PriceTable{Dates: dates, Columns: columns}
}

// Column returns the aligned values for ticker.
func (t *PriceTable) Column(ticker string) ([]null.Float, bool) {
	if t == nil {
		return nil, false
	}
	col, ok := t.Columns[ticker]
	return col, ok
}

// Series returns ticker's column zipped with the date index.
func (t *PriceTable) Series(ticker string) ([]PricePoint, bool) {
	col, ok := t.Column(ticker)
	if !ok {
		return nil, false
	}
	out := make([]PricePoint, len(col))
	for i, v := range col {
		out[i] = PricePoint{Date: t.Dates[i], Price: v}
	}
	return out, true
}

// Tickers lists the columns present, sorted.
func (t *PriceTable) Tickers() []string {
	out := make([]string, 0, len(t.Columns))
	for k := range t.Columns {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
