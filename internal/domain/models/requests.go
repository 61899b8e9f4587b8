package models

// DefaultTickers is the list pre-filled in the form and used when a request
// omits tickers.
const DefaultTickers = "SPY, QQQ, DIA, IWM, XLK, XLE, XLY, XLV, XLF, KO, MCD, PEP, MSFT, AAPL, VIST"

// AnalysisRequest is the explicit input of one analysis run. Period accepts
// a key ("1m") or a label ("Last month"); anything else resolves to one year.
type AnalysisRequest struct {
	Tickers string `query:"tickers" form:"tickers" json:"tickers" default:"SPY, QQQ, DIA, IWM, XLK, XLE, XLY, XLV, XLF, KO, MCD, PEP, MSFT, AAPL, VIST" validate:"required,max=2048"`
	Period  string `query:"period" form:"period" json:"period" default:"1y" validate:"max=64"`
	AsOf    string `query:"as_of" form:"as_of" json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Progress is emitted once per asset while an analysis runs.
type Progress struct {
	Ticker string        `json:"ticker"`
	Index  int           `json:"index"`
	Total  int           `json:"total"`
	OK     bool          `json:"ok"`
	Reason FailureReason `json:"reason,omitempty"`
}
