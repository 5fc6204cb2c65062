// Package indicator computes the running technical indicators one bar
// sequence feeds into the signal evaluator.
package indicator

// Value is one indicator sample. Valid is false while the lookback window
// has not filled, and for degenerate inputs (zero trailing volume, zero ROC
// base). Downstream comparisons must treat invalid as "condition not met".
type Value struct {
	F     float64
	Valid bool
}

func value(f float64) Value { return Value{F: f, Valid: true} }

// Gt reports a > b; false when either side is undefined.
func Gt(a, b Value) bool { return a.Valid && b.Valid && a.F > b.F }

// Lt reports a < b; false when either side is undefined.
func Lt(a, b Value) bool { return a.Valid && b.Valid && a.F < b.F }

// Pos reports a > 0; false when undefined.
func Pos(a Value) bool { return a.Valid && a.F > 0 }

// Neg reports a < 0; false when undefined.
func Neg(a Value) bool { return a.Valid && a.F < 0 }
