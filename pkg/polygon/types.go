package polygon

import (
	"encoding/json"
	"strconv"

	"github.com/shopspring/decimal"

	"options-tracker/pkg/shared"
)

// flexInt64 tolerates volumes arriving as either a JSON number (possibly
// fractional) or a quoted string.
type flexInt64 int64

func (f *flexInt64) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = flexInt64(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = flexInt64(v)
	return nil
}

type aggBar struct {
	TS    int64     `json:"t"`
	Open  float64   `json:"o"`
	High  float64   `json:"h"`
	Low   float64   `json:"l"`
	Close float64   `json:"c"`
	Vol   flexInt64 `json:"v"`
}

type aggregatesResponse struct {
	Ticker  string   `json:"ticker"`
	Status  string   `json:"status"`
	Count   int      `json:"resultsCount"`
	Results []aggBar `json:"results"`
}

type dailyOpenClose struct {
	Status string  `json:"status"`
	Symbol string  `json:"symbol"`
	Open   float64 `json:"open"`
	Close  float64 `json:"close"`
}

func (a aggBar) toBar(symbol string) shared.Bar {
	return shared.Bar{
		Symbol: symbol,
		TF:     shared.TFLabel(shared.NativeTF),
		TS:     a.TS,
		O:      decimal.NewFromFloat(a.Open),
		H:      decimal.NewFromFloat(a.High),
		L:      decimal.NewFromFloat(a.Low),
		C:      decimal.NewFromFloat(a.Close),
		Vol:    int64(a.Vol),
	}
}
