package ohlc

import (
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

func dec(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func minuteBar(min int, o, h, l, c float64, vol int64) shared.Bar {
	return shared.Bar{
		Symbol: "TEST", TF: "1m", TS: int64(min) * 60_000,
		O: dec(o), H: dec(h), L: dec(l), C: dec(c), Vol: vol,
	}
}

func TestBucketStart(t *testing.T) {
	if got := BucketStart(7*60_000, 5); got != 5*60_000 {
		t.Fatalf("minute 7 in 5m: got %d", got)
	}
	if got := BucketStart(5*60_000, 5); got != 5*60_000 {
		t.Fatalf("exact boundary: got %d", got)
	}
}

func TestResampleMerge(t *testing.T) {
	bars := []shared.Bar{
		minuteBar(0, 10, 12, 9, 11, 100),
		minuteBar(1, 11, 15, 11, 14, 50),
		minuteBar(2, 14, 14, 8, 9, 25),
		minuteBar(5, 9, 10, 9, 10, 10),
	}
	out := Resample(bars, 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	b := out[0]
	if b.TS != 0 || b.TF != "5m" {
		t.Fatalf("bucket meta wrong: ts=%d tf=%s", b.TS, b.TF)
	}
	if !b.O.Equal(dec(10)) || !b.H.Equal(dec(15)) || !b.L.Equal(dec(8)) || !b.C.Equal(dec(9)) {
		t.Fatalf("ohlc merge wrong: %s %s %s %s", b.O, b.H, b.L, b.C)
	}
	if b.Vol != 175 {
		t.Fatalf("vol sum wrong: %d", b.Vol)
	}
	if out[1].TS != 5*60_000 || out[1].Vol != 10 {
		t.Fatalf("partial bucket wrong: ts=%d vol=%d", out[1].TS, out[1].Vol)
	}
}

func TestResampleOmitsEmptyBuckets(t *testing.T) {
	bars := []shared.Bar{
		minuteBar(0, 1, 1, 1, 1, 1),
		minuteBar(11, 2, 2, 2, 2, 2),
	}
	out := Resample(bars, 5)
	if len(out) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(out))
	}
	if out[0].TS != 0 || out[1].TS != 10*60_000 {
		t.Fatalf("bucket timestamps: %d %d", out[0].TS, out[1].TS)
	}
}

func TestResampleEmpty(t *testing.T) {
	if out := Resample(nil, 5); out != nil {
		t.Fatalf("expected nil, got %v", out)
	}
}

func TestResampleIdempotentAtOwnWidth(t *testing.T) {
	var bars []shared.Bar
	for i := 0; i < 20; i++ {
		f := float64(i)
		bars = append(bars, minuteBar(i, f, f+2, f-1, f+1, int64(5+i)))
	}
	once := Resample(bars, 5)
	twice := Resample(once, 5)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("not idempotent:\n%v\n%v", once, twice)
	}
}

func TestResampleCascadeMatchesDirect(t *testing.T) {
	var bars []shared.Bar
	for i := 0; i < 40; i++ {
		f := float64(i)
		bars = append(bars, minuteBar(i, f, f+2, f-1, f+1, int64(10+i)))
	}
	via5 := Resample(Resample(bars, 5), 10)
	direct := Resample(bars, 10)
	if !reflect.DeepEqual(via5, direct) {
		t.Fatalf("cascade mismatch:\n%v\n%v", via5, direct)
	}
}
