// Package ohlc resamples minute bars into coarser fixed-width buckets.
package ohlc

import (
	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

const msPerMinute = int64(60_000)

// BucketStart returns the start (epoch ms) of the w-minute bucket holding ts.
func BucketStart(ts int64, w int) int64 {
	width := int64(w) * msPerMinute
	return ts - ts%width
}

// Resample buckets a 1-minute bar slice into w-minute bars. For each
// non-empty bucket: open of the earliest source bar, close of the latest,
// max high, min low, summed volume, timestamped at the bucket start.
// Buckets with no source bars are omitted. Input must be in strictly
// increasing timestamp order; the output then is too.
//
// The function is pure: incremental (newest-bucket) and full-range use give
// identical results for the same source bars.
func Resample(bars []shared.Bar, w int) []shared.Bar {
	if len(bars) == 0 {
		return nil
	}
	label := shared.TFLabel(w)
	out := make([]shared.Bar, 0, len(bars)/w+1)
	cur := shared.Bar{}
	open := false
	for _, b := range bars {
		bucket := BucketStart(b.TS, w)
		if !open || bucket != cur.TS {
			if open {
				out = append(out, cur)
			}
			cur = shared.Bar{
				Symbol: b.Symbol,
				TF:     label,
				TS:     bucket,
				O:      b.O,
				H:      b.H,
				L:      b.L,
				C:      b.C,
				Vol:    b.Vol,
			}
			open = true
			continue
		}
		cur.H = decimal.Max(cur.H, b.H)
		cur.L = decimal.Min(cur.L, b.L)
		cur.C = b.C
		cur.Vol += b.Vol
	}
	if open {
		out = append(out, cur)
	}
	return out
}
