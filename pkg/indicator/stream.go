package indicator

import "options-tracker/pkg/shared"

// Strategy lookbacks. Fixed by construction, not tunables.
const (
	emaFastPeriod    = 7
	vwmaPeriod       = 17
	macdFastPeriod   = 12
	macdSlowPeriod   = 26
	macdSignalPeriod = 9
	rocPeriod        = 8
)

// Snapshot is the indicator tuple for one bar. Snapshots line up 1:1 with
// the bars of a sequence and are never recomputed once produced.
type Snapshot struct {
	TS         int64
	EMA7       Value
	VWMA17     Value
	EMA12      Value
	EMA26      Value
	MACDLine   Value
	MACDSignal Value
	ROC8       Value
}

// Stream computes snapshots for one (contract, timeframe) bar sequence in
// arrival order. EMA and MACD-signal state carries forward, so feeding the
// same bars again from a fresh Stream reproduces identical snapshots.
type Stream struct {
	ema7       *EMA
	vwma17     *VWMA
	ema12      *EMA
	ema26      *EMA
	macdSignal *EMA // fed only with defined MACD-line values
	roc8       *ROC
}

func NewStream() *Stream {
	return &Stream{
		ema7:       NewEMA(emaFastPeriod),
		vwma17:     NewVWMA(vwmaPeriod),
		ema12:      NewEMA(macdFastPeriod),
		ema26:      NewEMA(macdSlowPeriod),
		macdSignal: NewEMA(macdSignalPeriod),
		roc8:       NewROC(rocPeriod),
	}
}

// Update consumes the next bar of the sequence and returns its snapshot.
func (s *Stream) Update(b shared.Bar) Snapshot {
	c, _ := b.C.Float64()
	vol := float64(b.Vol)

	snap := Snapshot{TS: b.TS}
	snap.EMA7 = s.ema7.Update(c)
	snap.VWMA17 = s.vwma17.Update(c, vol)
	snap.EMA12 = s.ema12.Update(c)
	snap.EMA26 = s.ema26.Update(c)
	snap.ROC8 = s.roc8.Update(c)
	if snap.EMA12.Valid && snap.EMA26.Valid {
		snap.MACDLine = value(snap.EMA12.F - snap.EMA26.F)
		snap.MACDSignal = s.macdSignal.Update(snap.MACDLine.F)
	}
	return snap
}

// Compute is the batch form: one snapshot per bar, in order.
func Compute(bars []shared.Bar) []Snapshot {
	s := NewStream()
	out := make([]Snapshot, 0, len(bars))
	for _, b := range bars {
		out = append(out, s.Update(b))
	}
	return out
}
