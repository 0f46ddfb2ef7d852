// Package units defines the monetary and time units shared by the quoter and
// the transfer ledger. Each unit is a distinct named type so that sats, cents
// and seconds cannot be mixed without an explicit conversion.
package units

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/shopspring/decimal"
)

// SatsPerBitcoin is the number of satoshis in one bitcoin.
const SatsPerBitcoin = btcutil.SatoshiPerBitcoin

// CentsPerDollar is the number of cents in one US dollar.
const CentsPerDollar = 100

// ErrNonPositiveRatio is returned when a ratio would be zero or negative.
var ErrNonPositiveRatio = errors.New("ratio must be positive")

// Satoshis is an amount of bitcoin expressed in its smallest unit.
type Satoshis int64

// String formats the amount in BTC.
func (s Satoshis) String() string {
	return btcutil.Amount(s).String()
}

// BTC returns the amount as a floating point number of bitcoin. Display only.
func (s Satoshis) BTC() float64 {
	return btcutil.Amount(s).ToBTC()
}

// IsNegative reports whether the amount is below zero.
func (s Satoshis) IsNegative() bool { return s < 0 }

// UsdCents is an amount of US dollars expressed in cents.
type UsdCents int64

// String formats the amount in dollars, e.g. "49.95 USD".
func (c UsdCents) String() string {
	return decimal.New(int64(c), -2).StringFixed(2) + " USD"
}

// IsNegative reports whether the amount is below zero.
func (c UsdCents) IsNegative() bool { return c < 0 }

// Seconds is a duration in whole seconds.
type Seconds int64

// Duration converts s to a time.Duration.
func (s Seconds) Duration() time.Duration {
	return time.Duration(s) * time.Second
}

// IsNegative reports whether s is below zero.
func (s Seconds) IsNegative() bool { return s < 0 }

// SecondsFromDuration truncates d to whole seconds.
func SecondsFromDuration(d time.Duration) Seconds {
	return Seconds(d / time.Second)
}

// CentsPerSatsRatio is a positive exchange rate in US cents per satoshi.
// The zero value is not a valid ratio.
type CentsPerSatsRatio struct {
	rat *big.Rat
}

// NewCentsPerSatsRatio wraps r, rejecting nil, zero and negative values.
func NewCentsPerSatsRatio(r *big.Rat) (CentsPerSatsRatio, error) {
	if r == nil || r.Sign() <= 0 {
		return CentsPerSatsRatio{}, ErrNonPositiveRatio
	}
	return CentsPerSatsRatio{rat: new(big.Rat).Set(r)}, nil
}

// CentsPerSatsFromUsdPerBtc converts a USD/BTC price into cents per satoshi.
func CentsPerSatsFromUsdPerBtc(usdPerBtc decimal.Decimal) (CentsPerSatsRatio, error) {
	r := usdPerBtc.Rat()
	r.Mul(r, big.NewRat(CentsPerDollar, SatsPerBitcoin))
	return NewCentsPerSatsRatio(r)
}

// Rat returns a copy of the underlying rational value.
func (r CentsPerSatsRatio) Rat() *big.Rat {
	if r.rat == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(r.rat)
}

// IsZero reports whether r is the (invalid) zero value.
func (r CentsPerSatsRatio) IsZero() bool {
	return r.rat == nil || r.rat.Sign() == 0
}

// Decimal renders r rounded half-up to the given number of decimal places.
func (r CentsPerSatsRatio) Decimal(places int32) decimal.Decimal {
	if r.rat == nil {
		return decimal.Zero
	}
	num := decimal.NewFromBigInt(r.rat.Num(), 0)
	den := decimal.NewFromBigInt(r.rat.Denom(), 0)
	return num.DivRound(den, places)
}

// Float64 returns the nearest float64 value. Display only.
func (r CentsPerSatsRatio) Float64() float64 {
	if r.rat == nil {
		return 0
	}
	f, _ := r.rat.Float64()
	return f
}

// Equal reports whether both ratios hold the same exact value.
func (r CentsPerSatsRatio) Equal(other CentsPerSatsRatio) bool {
	return r.Rat().Cmp(other.Rat()) == 0
}

func (r CentsPerSatsRatio) String() string {
	return r.Decimal(12).String()
}

// MarshalJSON encodes the ratio as a decimal string with 12 places.
func (r CentsPerSatsRatio) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Decimal(12).String())
}

// UnmarshalJSON accepts a decimal string or number.
func (r *CentsPerSatsRatio) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("parse ratio: %w", err)
	}
	parsed, err := NewCentsPerSatsRatio(d.Rat())
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
