package indicator

import (
	"math"
	"testing"
)

func TestEMASeedIsSMA(t *testing.T) {
	e := NewEMA(3)
	if v := e.Update(1); v.Valid {
		t.Fatal("defined before window filled")
	}
	if v := e.Update(2); v.Valid {
		t.Fatal("defined before window filled")
	}
	v := e.Update(3)
	if !v.Valid || v.F != 2.0 {
		t.Fatalf("seed: got %v, want 2", v)
	}
	// k = 2/(3+1) = 0.5
	v = e.Update(4)
	if !v.Valid || v.F != 3.0 {
		t.Fatalf("step: got %v, want 3", v)
	}
}

func TestEMAConvergesOnConstant(t *testing.T) {
	e := NewEMA(7)
	var v Value
	for i := 0; i < 50; i++ {
		v = e.Update(100)
	}
	if !v.Valid || math.Abs(v.F-100) > 1e-9 {
		t.Fatalf("got %v, want 100", v)
	}
}

func TestVWMAUniformVolumeEqualsSMA(t *testing.T) {
	v := NewVWMA(3)
	closes := []float64{1, 2, 3, 4, 5}
	var got Value
	for i, c := range closes {
		got = v.Update(c, 10)
		if i < 2 && got.Valid {
			t.Fatalf("defined at %d before window filled", i)
		}
	}
	if !got.Valid || got.F != 4.0 {
		t.Fatalf("got %v, want 4 (mean of 3,4,5)", got)
	}
}

func TestVWMAWeighting(t *testing.T) {
	v := NewVWMA(2)
	v.Update(10, 1)
	got := v.Update(20, 3)
	if !got.Valid || got.F != 17.5 {
		t.Fatalf("got %v, want 17.5", got)
	}
}

func TestVWMAZeroVolumeUndefined(t *testing.T) {
	v := NewVWMA(2)
	v.Update(10, 0)
	if got := v.Update(20, 0); got.Valid {
		t.Fatalf("defined with zero trailing volume: %v", got)
	}
	// recovers once volume returns
	if got := v.Update(30, 5); !got.Valid || got.F != 30 {
		t.Fatalf("got %v, want 30", got)
	}
}

func TestROC(t *testing.T) {
	r := NewROC(2)
	if v := r.Update(100); v.Valid {
		t.Fatal("defined too early")
	}
	if v := r.Update(110); v.Valid {
		t.Fatal("defined too early")
	}
	v := r.Update(121)
	if !v.Valid || v.F != 21.0 {
		t.Fatalf("got %v, want 21", v)
	}
}

func TestROCZeroBaseUndefined(t *testing.T) {
	r := NewROC(2)
	r.Update(0)
	r.Update(1)
	if v := r.Update(2); v.Valid {
		t.Fatalf("defined with zero base: %v", v)
	}
	// base slides to 1 on the next bar
	if v := r.Update(3); !v.Valid || v.F != 200 {
		t.Fatalf("got %v, want 200", v)
	}
}

func TestROCConstantSeriesIsZero(t *testing.T) {
	r := NewROC(8)
	var v Value
	for i := 0; i < 20; i++ {
		v = r.Update(42)
	}
	if !v.Valid || v.F != 0 {
		t.Fatalf("got %v, want 0", v)
	}
}
