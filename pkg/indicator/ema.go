package indicator

// EMA is a streaming exponential moving average. The first defined sample
// is the simple average of the first N inputs; after that
// ema = x*k + prev*(1-k) with k = 2/(N+1).
type EMA struct {
	period  int
	k       float64
	seen    int
	seedSum float64
	cur     float64
	warm    bool
}

func NewEMA(period int) *EMA {
	return &EMA{period: period, k: 2.0 / float64(period+1)}
}

func (e *EMA) Update(x float64) Value {
	if !e.warm {
		e.seen++
		e.seedSum += x
		if e.seen < e.period {
			return Value{}
		}
		e.cur = e.seedSum / float64(e.period)
		e.warm = true
		return value(e.cur)
	}
	e.cur = x*e.k + e.cur*(1-e.k)
	return value(e.cur)
}

// VWMA is a streaming volume-weighted moving average over a trailing
// window of N bars. Undefined until the window fills, and for any bar
// where the trailing volume sum is exactly zero.
type VWMA struct {
	period int
	closes []float64
	vols   []float64
	idx    int
	count  int
}

func NewVWMA(period int) *VWMA {
	return &VWMA{
		period: period,
		closes: make([]float64, period),
		vols:   make([]float64, period),
	}
}

func (v *VWMA) Update(close, vol float64) Value {
	v.closes[v.idx] = close
	v.vols[v.idx] = vol
	v.idx = (v.idx + 1) % v.period
	if v.count < v.period {
		v.count++
	}
	if v.count < v.period {
		return Value{}
	}
	var pv, vs float64
	for i := 0; i < v.period; i++ {
		pv += v.closes[i] * v.vols[i]
		vs += v.vols[i]
	}
	if vs == 0 {
		return Value{}
	}
	return value(pv / vs)
}

// ROC is a streaming rate of change: percent move versus the close N bars
// back. Undefined until N+1 closes are seen, and when the base close is
// exactly zero.
type ROC struct {
	period int
	hist   []float64
	idx    int
	count  int
}

func NewROC(period int) *ROC {
	return &ROC{period: period, hist: make([]float64, period+1)}
}

func (r *ROC) Update(close float64) Value {
	r.hist[r.idx] = close
	r.idx = (r.idx + 1) % len(r.hist)
	if r.count < len(r.hist) {
		r.count++
	}
	if r.count < len(r.hist) {
		return Value{}
	}
	base := r.hist[r.idx] // oldest slot, N bars back
	if base == 0 {
		return Value{}
	}
	return value((close - base) / base * 100)
}
