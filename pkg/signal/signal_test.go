package signal

import (
	"testing"

	"options-tracker/pkg/indicator"
)

func val(f float64) indicator.Value { return indicator.Value{F: f, Valid: true} }

// all three entry conditions hold
func bullish() indicator.Snapshot {
	return indicator.Snapshot{
		EMA7: val(11), VWMA17: val(10),
		ROC8:     val(2),
		MACDLine: val(1), MACDSignal: val(0.5),
	}
}

// all three reversal conditions hold
func bearish() indicator.Snapshot {
	return indicator.Snapshot{
		EMA7: val(9), VWMA17: val(10),
		ROC8:     val(-2),
		MACDLine: val(0.2), MACDSignal: val(0.5),
	}
}

func TestEnterRequiresAllConditions(t *testing.T) {
	if got := Evaluate(bullish(), false); got != Enter {
		t.Fatalf("all bullish: got %v", got)
	}
	s := bullish()
	s.EMA7 = val(9)
	if got := Evaluate(s, false); got != None {
		t.Fatalf("ema below vwma: got %v", got)
	}
	s = bullish()
	s.ROC8 = val(-1)
	if got := Evaluate(s, false); got != None {
		t.Fatalf("negative roc: got %v", got)
	}
	s = bullish()
	s.MACDLine, s.MACDSignal = val(0.1), val(0.5)
	if got := Evaluate(s, false); got != None {
		t.Fatalf("macd below signal: got %v", got)
	}
}

func TestUndefinedIndicatorBlocksEntry(t *testing.T) {
	s := bullish()
	s.ROC8 = indicator.Value{}
	if got := Evaluate(s, false); got != None {
		t.Fatalf("undefined roc: got %v", got)
	}
	s = bullish()
	s.VWMA17 = indicator.Value{}
	if got := Evaluate(s, false); got != None {
		t.Fatalf("undefined vwma: got %v", got)
	}
}

func TestExitNeedsTwoOfThree(t *testing.T) {
	if got := Evaluate(bearish(), true); got != Exit {
		t.Fatalf("all bearish: got %v", got)
	}
	// only one reversal condition
	s := bullish()
	s.ROC8 = val(-1)
	if got := Evaluate(s, true); got != None {
		t.Fatalf("one of three: got %v", got)
	}
	// exactly two
	s = bullish()
	s.ROC8 = val(-1)
	s.EMA7 = val(9)
	if got := Evaluate(s, true); got != Exit {
		t.Fatalf("two of three: got %v", got)
	}
}

func TestNoExitWhenFlat(t *testing.T) {
	if got := Evaluate(bearish(), false); got != None {
		t.Fatalf("flat position: got %v", got)
	}
}

func TestNoEntryWhenOpen(t *testing.T) {
	if got := Evaluate(bullish(), true); got != None {
		t.Fatalf("already open: got %v", got)
	}
}

func TestUndefinedNeverCountsTowardExit(t *testing.T) {
	s := bearish()
	s.EMA7 = indicator.Value{}
	s.MACDSignal = indicator.Value{}
	// only roc remains defined and negative: 1 of 3
	if got := Evaluate(s, true); got != None {
		t.Fatalf("undefined conditions counted: got %v", got)
	}
}
