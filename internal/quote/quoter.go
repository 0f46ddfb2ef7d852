// Package quote converts between satoshis and US cents using a bid/ask spread
// model that always prices in the dealer's favour.
//
// Buy conversions (the dealer buys BTC) start from the bid and discount it by
// the base fee plus a spread. Sell conversions (the dealer sells BTC) start
// from the ask and inflate it by the same components. Immediate settlement
// uses the immediate spread, future settlement the delayed spread. Every
// result is rounded towards the dealer: down when the dealer pays out, up when
// the dealer receives.
package quote

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/thanhnp/dealer-hedge/pkg/units"
)

var (
	// ErrInvalidAmount is returned for negative amounts, negative expiries
	// and results that do not fit in 64 bits.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidPrice is returned for non-positive or crossed bid/ask prices.
	ErrInvalidPrice = errors.New("invalid price")
	// ErrInvalidFees is returned when the fee schedule cannot favour the dealer.
	ErrInvalidFees = errors.New("invalid fees")
)

// centsPerSatPerUsdPerBtc converts a USD/BTC price into cents per satoshi.
var centsPerSatPerUsdPerBtc = big.NewRat(units.CentsPerDollar, units.SatsPerBitcoin)

// Prices holds the reference market rates in USD per BTC.
type Prices struct {
	Bid decimal.Decimal `json:"bid"`
	Ask decimal.Decimal `json:"ask"`
}

// Validate checks that both prices are positive and not crossed.
func (p Prices) Validate() error {
	if !p.Bid.IsPositive() || !p.Ask.IsPositive() {
		return fmt.Errorf("%w: bid and ask must be positive", ErrInvalidPrice)
	}
	if p.Bid.GreaterThan(p.Ask) {
		return fmt.Errorf("%w: bid %s above ask %s", ErrInvalidPrice, p.Bid, p.Ask)
	}
	return nil
}

// Fees is the dealer fee schedule, each component a fraction of the price.
type Fees struct {
	BaseFee         decimal.Decimal
	ImmediateSpread decimal.Decimal
	DelayedSpread   decimal.Decimal
}

// Validate checks that the schedule yields a strictly positive, sub-100%
// margin and that delayed settlement never costs less than immediate.
func (f Fees) Validate() error {
	if f.BaseFee.IsNegative() || f.ImmediateSpread.IsNegative() || f.DelayedSpread.IsNegative() {
		return fmt.Errorf("%w: fee components must not be negative", ErrInvalidFees)
	}
	if !f.BaseFee.Add(f.ImmediateSpread).IsPositive() {
		return fmt.Errorf("%w: base fee plus immediate spread must be positive", ErrInvalidFees)
	}
	if f.DelayedSpread.LessThan(f.ImmediateSpread) {
		return fmt.Errorf("%w: delayed spread %s below immediate spread %s", ErrInvalidFees, f.DelayedSpread, f.ImmediateSpread)
	}
	if f.BaseFee.Add(f.DelayedSpread).GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("%w: total margin must be below 1", ErrInvalidFees)
	}
	return nil
}

// Quoter prices conversions for one bid/ask observation. It is immutable and
// safe for concurrent use.
type Quoter struct {
	mid units.CentsPerSatsRatio

	immediateBuy  *big.Rat
	immediateSell *big.Rat
	futureBuy     *big.Rat
	futureSell    *big.Rat
}

// New builds a Quoter for the given prices and fee schedule.
func New(prices Prices, fees Fees) (*Quoter, error) {
	if err := prices.Validate(); err != nil {
		return nil, err
	}
	if err := fees.Validate(); err != nil {
		return nil, err
	}
	bid := new(big.Rat).Mul(prices.Bid.Rat(), centsPerSatPerUsdPerBtc)
	ask := new(big.Rat).Mul(prices.Ask.Rat(), centsPerSatPerUsdPerBtc)

	base := fees.BaseFee.Rat()
	immediate := new(big.Rat).Add(base, fees.ImmediateSpread.Rat())
	delayed := new(big.Rat).Add(base, fees.DelayedSpread.Rat())

	mid := new(big.Rat).Add(bid, ask)
	mid.Quo(mid, big.NewRat(2, 1))
	midRatio, err := units.NewCentsPerSatsRatio(mid)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}

	return &Quoter{
		mid:           midRatio,
		immediateBuy:  discounted(bid, immediate),
		immediateSell: inflated(ask, immediate),
		futureBuy:     discounted(bid, delayed),
		futureSell:    inflated(ask, delayed),
	}, nil
}

// discounted returns rate * (1 - margin).
func discounted(rate, margin *big.Rat) *big.Rat {
	factor := new(big.Rat).Sub(big.NewRat(1, 1), margin)
	return factor.Mul(factor, rate)
}

// inflated returns rate * (1 + margin).
func inflated(rate, margin *big.Rat) *big.Rat {
	factor := new(big.Rat).Add(big.NewRat(1, 1), margin)
	return factor.Mul(factor, rate)
}

// SatsToCentsImmediateBuy prices sats the dealer buys now. Rounded down.
func (q *Quoter) SatsToCentsImmediateBuy(sats units.Satoshis) (units.UsdCents, error) {
	if sats.IsNegative() {
		return 0, fmt.Errorf("%w: sats %d", ErrInvalidAmount, sats)
	}
	cents, err := floorInt64(mulInt(int64(sats), q.immediateBuy))
	return units.UsdCents(cents), err
}

// SatsToCentsImmediateSell prices sats the dealer sells now. Rounded up.
func (q *Quoter) SatsToCentsImmediateSell(sats units.Satoshis) (units.UsdCents, error) {
	if sats.IsNegative() {
		return 0, fmt.Errorf("%w: sats %d", ErrInvalidAmount, sats)
	}
	cents, err := ceilInt64(mulInt(int64(sats), q.immediateSell))
	return units.UsdCents(cents), err
}

// SatsToCentsFutureBuy prices sats the dealer buys for delayed settlement.
// The expiry only has to be non-negative; it does not enter the arithmetic.
func (q *Quoter) SatsToCentsFutureBuy(sats units.Satoshis, expiry units.Seconds) (units.UsdCents, error) {
	if sats.IsNegative() {
		return 0, fmt.Errorf("%w: sats %d", ErrInvalidAmount, sats)
	}
	if expiry.IsNegative() {
		return 0, fmt.Errorf("%w: expiry %ds", ErrInvalidAmount, expiry)
	}
	cents, err := floorInt64(mulInt(int64(sats), q.futureBuy))
	return units.UsdCents(cents), err
}

// SatsToCentsFutureSell prices sats the dealer sells for delayed settlement.
func (q *Quoter) SatsToCentsFutureSell(sats units.Satoshis, expiry units.Seconds) (units.UsdCents, error) {
	if sats.IsNegative() {
		return 0, fmt.Errorf("%w: sats %d", ErrInvalidAmount, sats)
	}
	if expiry.IsNegative() {
		return 0, fmt.Errorf("%w: expiry %ds", ErrInvalidAmount, expiry)
	}
	cents, err := ceilInt64(mulInt(int64(sats), q.futureSell))
	return units.UsdCents(cents), err
}

// CentsToSatsImmediateBuy returns the sats the counterparty must deliver to
// receive cents now. Rounded up.
func (q *Quoter) CentsToSatsImmediateBuy(cents units.UsdCents) (units.Satoshis, error) {
	if cents.IsNegative() {
		return 0, fmt.Errorf("%w: cents %d", ErrInvalidAmount, cents)
	}
	sats, err := ceilInt64(quoInt(int64(cents), q.immediateBuy))
	return units.Satoshis(sats), err
}

// CentsToSatsImmediateSell returns the sats the counterparty receives for
// cents now. Rounded down.
func (q *Quoter) CentsToSatsImmediateSell(cents units.UsdCents) (units.Satoshis, error) {
	if cents.IsNegative() {
		return 0, fmt.Errorf("%w: cents %d", ErrInvalidAmount, cents)
	}
	sats, err := floorInt64(quoInt(int64(cents), q.immediateSell))
	return units.Satoshis(sats), err
}

// CentsToSatsFutureBuy is CentsToSatsImmediateBuy with the delayed spread.
func (q *Quoter) CentsToSatsFutureBuy(cents units.UsdCents, expiry units.Seconds) (units.Satoshis, error) {
	if cents.IsNegative() {
		return 0, fmt.Errorf("%w: cents %d", ErrInvalidAmount, cents)
	}
	if expiry.IsNegative() {
		return 0, fmt.Errorf("%w: expiry %ds", ErrInvalidAmount, expiry)
	}
	sats, err := ceilInt64(quoInt(int64(cents), q.futureBuy))
	return units.Satoshis(sats), err
}

// CentsToSatsFutureSell is CentsToSatsImmediateSell with the delayed spread.
func (q *Quoter) CentsToSatsFutureSell(cents units.UsdCents, expiry units.Seconds) (units.Satoshis, error) {
	if cents.IsNegative() {
		return 0, fmt.Errorf("%w: cents %d", ErrInvalidAmount, cents)
	}
	if expiry.IsNegative() {
		return 0, fmt.Errorf("%w: expiry %ds", ErrInvalidAmount, expiry)
	}
	sats, err := floorInt64(quoInt(int64(cents), q.futureSell))
	return units.Satoshis(sats), err
}

// MidRate is the plain average of bid and ask in cents per satoshi. It is for
// display and estimation only and carries no fees.
func (q *Quoter) MidRate() units.CentsPerSatsRatio {
	return q.mid
}

// ImmediateBuyRate is the effective rate applied by the immediate buy conversions.
func (q *Quoter) ImmediateBuyRate() units.CentsPerSatsRatio { return mustRatio(q.immediateBuy) }

// ImmediateSellRate is the effective rate applied by the immediate sell conversions.
func (q *Quoter) ImmediateSellRate() units.CentsPerSatsRatio { return mustRatio(q.immediateSell) }

// FutureBuyRate is the effective rate applied by the future buy conversions.
func (q *Quoter) FutureBuyRate() units.CentsPerSatsRatio { return mustRatio(q.futureBuy) }

// FutureSellRate is the effective rate applied by the future sell conversions.
func (q *Quoter) FutureSellRate() units.CentsPerSatsRatio { return mustRatio(q.futureSell) }

// mustRatio wraps a rate that New already proved positive.
func mustRatio(r *big.Rat) units.CentsPerSatsRatio {
	ratio, err := units.NewCentsPerSatsRatio(r)
	if err != nil {
		panic(err)
	}
	return ratio
}

func mulInt(n int64, rate *big.Rat) *big.Rat {
	return new(big.Rat).Mul(new(big.Rat).SetInt64(n), rate)
}

func quoInt(n int64, rate *big.Rat) *big.Rat {
	return new(big.Rat).Quo(new(big.Rat).SetInt64(n), rate)
}

func floorInt64(r *big.Rat) (int64, error) {
	q, _ := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	return toInt64(q)
}

func ceilInt64(r *big.Rat) (int64, error) {
	q, m := new(big.Int).DivMod(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return toInt64(q)
}

func toInt64(n *big.Int) (int64, error) {
	if !n.IsInt64() {
		return 0, fmt.Errorf("%w: result %s out of range", ErrInvalidAmount, n)
	}
	return n.Int64(), nil
}
