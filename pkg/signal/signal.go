// Package signal turns indicator snapshots into entry/exit decisions and
// tracks the resulting simulated positions.
package signal

import "options-tracker/pkg/indicator"

type Action int

const (
	None Action = iota
	Enter
	Exit
)

func (a Action) String() string {
	switch a {
	case Enter:
		return "ENTER"
	case Exit:
		return "EXIT"
	default:
		return "NONE"
	}
}

// Evaluate derives the action for one bar from its snapshot and whether the
// position was open at the start of the bar. An undefined indicator never
// satisfies a condition. A position opened on a bar is not exited on that
// same bar: entry and exit are gated on the start-of-bar state.
func Evaluate(snap indicator.Snapshot, openAtBarStart bool) Action {
	if openAtBarStart {
		if exitScore(snap) >= 2 {
			return Exit
		}
		return None
	}
	if enterConditions(snap) {
		return Enter
	}
	return None
}

// enterConditions requires all three: EMA7 above VWMA17, positive ROC8,
// MACD line above its signal.
func enterConditions(s indicator.Snapshot) bool {
	return indicator.Gt(s.EMA7, s.VWMA17) &&
		indicator.Pos(s.ROC8) &&
		indicator.Gt(s.MACDLine, s.MACDSignal)
}

// exitScore counts the reversal conditions that hold; 2 of 3 closes the
// position.
func exitScore(s indicator.Snapshot) int {
	n := 0
	if indicator.Lt(s.EMA7, s.VWMA17) {
		n++
	}
	if indicator.Neg(s.ROC8) {
		n++
	}
	if indicator.Lt(s.MACDLine, s.MACDSignal) {
		n++
	}
	return n
}
