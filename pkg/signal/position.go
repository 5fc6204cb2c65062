package signal

import (
	"github.com/shopspring/decimal"

	"options-tracker/pkg/indicator"
	"options-tracker/pkg/shared"
)

// Position is the per (contract, timeframe) state machine: Flat→Open on
// Enter, Open→Flat on Exit with exactly one TradeRecord emitted. It holds
// at most one open position at a time and processes bars strictly in
// sequence order, so replaying a sequence reproduces identical trades.
type Position struct {
	Symbol     string
	TF         string
	Open       bool
	EntryPrice decimal.Decimal
	EntryTS    int64
}

func NewPosition(symbol, tf string) *Position {
	return &Position{Symbol: symbol, TF: tf}
}

// OnBar applies one closed bar and its snapshot. Fills happen at the bar
// close. Returns a TradeRecord when the bar closes the position, nil
// otherwise.
func (p *Position) OnBar(b shared.Bar, snap indicator.Snapshot) *shared.TradeRecord {
	switch Evaluate(snap, p.Open) {
	case Enter:
		p.Open = true
		p.EntryPrice = b.C
		p.EntryTS = b.TS
	case Exit:
		tr := &shared.TradeRecord{
			Symbol:     p.Symbol,
			TF:         p.TF,
			EntryTS:    p.EntryTS,
			ExitTS:     b.TS,
			EntryPrice: p.EntryPrice,
			ExitPrice:  b.C,
			PnL:        b.C.Sub(p.EntryPrice),
		}
		p.Open = false
		p.EntryPrice = decimal.Zero
		p.EntryTS = 0
		return tr
	}
	return nil
}
