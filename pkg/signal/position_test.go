package signal

import (
	"testing"

	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

func barAt(ts int64, close float64) shared.Bar {
	d := decimal.NewFromFloat(close)
	return shared.Bar{Symbol: "TEST", TF: "1m", TS: ts, O: d, H: d, L: d, C: d, Vol: 1}
}

func TestPositionLifecycle(t *testing.T) {
	p := NewPosition("TEST", "1m")

	if tr := p.OnBar(barAt(0, 100), bullish()); tr != nil {
		t.Fatal("entry emitted a trade record")
	}
	if !p.Open || !p.EntryPrice.Equal(decimal.NewFromFloat(100)) || p.EntryTS != 0 {
		t.Fatalf("entry state wrong: %+v", p)
	}

	// holding through a neutral bar
	neutral := bullish()
	neutral.ROC8 = val(-1)
	if tr := p.OnBar(barAt(60_000, 105), neutral); tr != nil {
		t.Fatal("one reversal condition closed the position")
	}

	tr := p.OnBar(barAt(120_000, 110), bearish())
	if tr == nil {
		t.Fatal("exit emitted no trade record")
	}
	if tr.EntryTS != 0 || tr.ExitTS != 120_000 {
		t.Fatalf("trade timestamps wrong: %+v", tr)
	}
	if !tr.PnL.Equal(decimal.NewFromFloat(10)) {
		t.Fatalf("pnl: got %s, want 10", tr.PnL)
	}
	if p.Open {
		t.Fatal("position still open after exit")
	}
}

func TestNoSameBarExit(t *testing.T) {
	p := NewPosition("TEST", "1m")
	// conditions are evaluated against the start-of-bar state, so an entry
	// bar can never also exit
	if tr := p.OnBar(barAt(0, 100), bullish()); tr != nil {
		t.Fatal("trade on entry bar")
	}
	if !p.Open {
		t.Fatal("position not opened")
	}
}

func TestNoDoubleOpen(t *testing.T) {
	p := NewPosition("TEST", "1m")
	p.OnBar(barAt(0, 100), bullish())
	p.OnBar(barAt(60_000, 120), bullish())
	if !p.EntryPrice.Equal(decimal.NewFromFloat(100)) || p.EntryTS != 0 {
		t.Fatalf("second entry overwrote the first: %+v", p)
	}
}

func TestReplayDeterminism(t *testing.T) {
	run := func() []shared.TradeRecord {
		p := NewPosition("TEST", "1m")
		var out []shared.TradeRecord
		seq := []struct {
			close float64
			bull  bool
		}{{100, true}, {105, true}, {95, false}, {90, true}, {110, false}}
		for i, st := range seq {
			s := bearish()
			if st.bull {
				s = bullish()
			}
			if tr := p.OnBar(barAt(int64(i)*60_000, st.close), s); tr != nil {
				out = append(out, *tr)
			}
		}
		return out
	}
	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("trade counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].EntryTS != b[i].EntryTS || a[i].ExitTS != b[i].ExitTS || !a[i].PnL.Equal(b[i].PnL) {
			t.Fatalf("trade %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
