// Package contract picks the option contracts a run tracks: expiry date
// from the run date, strikes from the underlying's reference price.
package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OptionType string

const (
	Call OptionType = "C"
	Put  OptionType = "P"
)

// Contract identifies one option. Computed once at run start and held
// fixed for the run.
type Contract struct {
	Underlying string
	Expiry     time.Time
	Type       OptionType
	Strike     decimal.Decimal
}

// ResolveExpiry computes the expiry/strike date from the reference date:
// two calendar days ahead, then a single weekend correction of two more
// days. A Thursday start lands on Saturday and corrects to Monday; a
// Friday start lands on Sunday and corrects to Tuesday. This is not
// business-day arithmetic and must stay that way: it mirrors the contract
// selection the strategy is tested against.
func ResolveExpiry(d time.Time) time.Time {
	cand := d.AddDate(0, 0, 2)
	switch cand.Weekday() {
	case time.Saturday, time.Sunday:
		cand = cand.AddDate(0, 0, 2)
	}
	return cand
}

// Symbol renders the OCC short form: SYMBOL + YYMMDD + C|P + strike*1000
// zero-padded to 8 digits.
func (c Contract) Symbol() string {
	strike := c.Strike.Mul(decimal.NewFromInt(1000)).IntPart()
	return fmt.Sprintf("%s%s%s%08d",
		strings.ToUpper(c.Underlying), c.Expiry.Format("060102"), c.Type, strike)
}

// TrackedSet returns the four contracts a run follows: call and put at the
// money, and call and put one dollar below. The reference price is used
// unrounded.
func TrackedSet(underlying string, refPrice decimal.Decimal, refDate time.Time) []Contract {
	expiry := ResolveExpiry(refDate)
	otm := refPrice.Sub(decimal.NewFromInt(1))
	return []Contract{
		{Underlying: underlying, Expiry: expiry, Type: Call, Strike: refPrice},
		{Underlying: underlying, Expiry: expiry, Type: Put, Strike: refPrice},
		{Underlying: underlying, Expiry: expiry, Type: Call, Strike: otm},
		{Underlying: underlying, Expiry: expiry, Type: Put, Strike: otm},
	}
}
