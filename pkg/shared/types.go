package shared

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Bar is one OHLCV bar for an option contract. TS is the bucket start in
// epoch milliseconds (UTC). Within one (symbol, tf) sequence timestamps are
// strictly increasing; gaps are allowed and never filled in.
type Bar struct {
	Symbol string          `json:"symbol"`
	TF     string          `json:"tf"`
	TS     int64           `json:"ts"`
	O      decimal.Decimal `json:"o"`
	H      decimal.Decimal `json:"h"`
	L      decimal.Decimal `json:"l"`
	C      decimal.Decimal `json:"c"`
	Vol    int64           `json:"vol"`
}

func (b Bar) Time() time.Time {
	return time.UnixMilli(b.TS).UTC()
}

// NativeTF is the granularity bars arrive at; DerivedTFs are resampled from it.
const NativeTF = 1

var DerivedTFs = []int{5, 10}

// TFLabel renders a timeframe in minutes as a topic/table suffix ("5m").
func TFLabel(tf int) string { return fmt.Sprintf("%dm", tf) }

// TradeRecord is one completed entry→exit cycle, emitted exactly once per
// cycle by the position state machine and immutable afterwards.
type TradeRecord struct {
	Symbol     string          `json:"symbol"`
	TF         string          `json:"tf"`
	EntryTS    int64           `json:"entry_ts"`
	ExitTS     int64           `json:"exit_ts"`
	EntryPrice decimal.Decimal `json:"entry_price"`
	ExitPrice  decimal.Decimal `json:"exit_price"`
	PnL        decimal.Decimal `json:"pnl"`
}

// RunSummary aggregates trade outcomes for one backtest run.
type RunSummary struct {
	Trades  int             `json:"trades"`
	Wins    int             `json:"wins"`
	Losses  int             `json:"losses"`
	WinRate float64         `json:"win_rate_pct"`
	NetPnL  decimal.Decimal `json:"net_pnl"`
}

func (s *RunSummary) Add(tr TradeRecord) {
	s.Trades++
	switch {
	case tr.PnL.IsPositive():
		s.Wins++
	case tr.PnL.IsNegative():
		s.Losses++
	}
	s.NetPnL = s.NetPnL.Add(tr.PnL)
	if s.Trades > 0 {
		s.WinRate = float64(s.Wins) / float64(s.Trades) * 100
	}
}
