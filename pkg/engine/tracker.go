// Package engine wires the aggregator, indicator streams and position
// machines for the tracked contracts across the 1m/5m/10m timeframes.
package engine

import (
	"github.com/shopspring/decimal"

	"options-tracker/pkg/indicator"
	"options-tracker/pkg/ohlc"
	"options-tracker/pkg/shared"
	"options-tracker/pkg/signal"
)

// Key addresses one independent (contract, timeframe) pipeline.
type Key struct {
	Symbol string
	TF     string
}

// Entry reports a position opening. Exits arrive as full TradeRecords;
// entries only carry the fill.
type Entry struct {
	Symbol string
	TF     string
	Price  decimal.Decimal
	TS     int64
}

// Event is everything produced by feeding bars into the tracker: the
// newly closed bars per timeframe, position entries and completed trades.
type Event struct {
	Bars    []shared.Bar
	Entries []Entry
	Trades  []shared.TradeRecord
}

func (e *Event) merge(other Event) {
	e.Bars = append(e.Bars, other.Bars...)
	e.Entries = append(e.Entries, other.Entries...)
	e.Trades = append(e.Trades, other.Trades...)
}

type seqState struct {
	stream *indicator.Stream
	pos    *signal.Position
	lastTS int64
}

// Tracker owns the per-contract 1-minute history and one seqState per
// (contract, timeframe). Each key's state is touched only by that key's
// bars, so keys never share mutable state. All methods must be called from
// one goroutine per Tracker.
type Tracker struct {
	hist   map[string][]shared.Bar
	states map[Key]*seqState
}

func NewTracker() *Tracker {
	return &Tracker{
		hist:   make(map[string][]shared.Bar),
		states: make(map[Key]*seqState),
	}
}

func (t *Tracker) state(symbol, tf string) *seqState {
	k := Key{Symbol: symbol, TF: tf}
	st, ok := t.states[k]
	if !ok {
		st = &seqState{
			stream: indicator.NewStream(),
			pos:    signal.NewPosition(symbol, tf),
			lastTS: -1,
		}
		t.states[k] = st
	}
	return st
}

// Append feeds one closed 1-minute bar. The native bar is evaluated
// directly; for the derived timeframes only buckets that can no longer
// change (start strictly before the bucket holding this bar) are fed.
// Out-of-order and duplicate timestamps are dropped.
func (t *Tracker) Append(b shared.Bar) Event {
	hist := t.hist[b.Symbol]
	if n := len(hist); n > 0 && b.TS <= hist[n-1].TS {
		return Event{}
	}
	if b.TF == "" {
		b.TF = shared.TFLabel(shared.NativeTF)
	}
	t.hist[b.Symbol] = append(hist, b)

	var ev Event
	t.feed(&ev, t.state(b.Symbol, b.TF), b)
	for _, tf := range shared.DerivedTFs {
		cutoff := ohlc.BucketStart(b.TS, tf)
		t.feedDerived(&ev, b.Symbol, tf, cutoff)
	}
	return ev
}

// Flush closes out the final, still-filling derived buckets. Call once at
// the end of a bounded run so batch output matches a full-range resample.
func (t *Tracker) Flush() Event {
	var ev Event
	for symbol := range t.hist {
		for _, tf := range shared.DerivedTFs {
			t.feedDerived(&ev, symbol, tf, int64(1)<<62)
		}
	}
	return ev
}

func (t *Tracker) feedDerived(ev *Event, symbol string, tf int, cutoff int64) {
	st := t.state(symbol, shared.TFLabel(tf))
	for _, rb := range ohlc.Resample(t.hist[symbol], tf) {
		if rb.TS >= cutoff {
			break
		}
		if rb.TS <= st.lastTS {
			continue
		}
		t.feed(ev, st, rb)
	}
}

func (t *Tracker) feed(ev *Event, st *seqState, b shared.Bar) {
	snap := st.stream.Update(b)
	st.lastTS = b.TS
	ev.Bars = append(ev.Bars, b)
	wasOpen := st.pos.Open
	if tr := st.pos.OnBar(b, snap); tr != nil {
		ev.Trades = append(ev.Trades, *tr)
	}
	if !wasOpen && st.pos.Open {
		ev.Entries = append(ev.Entries, Entry{
			Symbol: st.pos.Symbol, TF: st.pos.TF,
			Price: st.pos.EntryPrice, TS: st.pos.EntryTS,
		})
	}
}

// OpenPositions reports how many keys currently hold an open position.
func (t *Tracker) OpenPositions() int {
	n := 0
	for _, st := range t.states {
		if st.pos.Open {
			n++
		}
	}
	return n
}

// Run replays a full 1-minute history for one contract and returns every
// event, final buckets included. Backtests call this per contract.
func Run(symbol string, bars []shared.Bar) Event {
	t := NewTracker()
	var ev Event
	for _, b := range bars {
		b.Symbol = symbol
		ev.merge(t.Append(b))
	}
	ev.merge(t.Flush())
	return ev
}

// Summarize folds trade records into a run summary.
func Summarize(trades []shared.TradeRecord) shared.RunSummary {
	var s shared.RunSummary
	for _, tr := range trades {
		s.Add(tr)
	}
	return s
}
