package quote

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/thanhnp/dealer-hedge/pkg/units"
)

func testFees() Fees {
	return Fees{
		BaseFee:         decimal.RequireFromString("0.0005"),
		ImmediateSpread: decimal.RequireFromString("0.0005"),
		DelayedSpread:   decimal.RequireFromString("0.001"),
	}
}

func testPrices() Prices {
	return Prices{
		Bid: decimal.RequireFromString("50000"),
		Ask: decimal.RequireFromString("50200"),
	}
}

func newTestQuoter(t *testing.T) *Quoter {
	t.Helper()
	q, err := New(testPrices(), testFees())
	require.NoError(t, err)
	return q
}

func TestSatsToCentsFixtures(t *testing.T) {
	q := newTestQuoter(t)
	cases := []struct {
		sats          units.Satoshis
		immediateBuy  units.UsdCents
		immediateSell units.UsdCents
		futureBuy     units.UsdCents
		futureSell    units.UsdCents
	}{
		// round(50000 * 0.001 * (1 - 0.001) * 100) = 4995, exact
		{sats: 100_000, immediateBuy: 4995, immediateSell: 5026, futureBuy: 4992, futureSell: 5028},
		{sats: 100_001, immediateBuy: 4995, immediateSell: 5026, futureBuy: 4992, futureSell: 5028},
		{sats: 11, immediateBuy: 0, immediateSell: 1, futureBuy: 0, futureSell: 1},
		{sats: 123_456_789, immediateBuy: 6_166_666, immediateSell: 6_203_729, futureBuy: 6_163_580, futureSell: 6_206_828},
		{sats: 0, immediateBuy: 0, immediateSell: 0, futureBuy: 0, futureSell: 0},
	}
	for _, tc := range cases {
		got, err := q.SatsToCentsImmediateBuy(tc.sats)
		require.NoError(t, err)
		require.Equal(t, tc.immediateBuy, got, "immediate buy %d", tc.sats)

		got, err = q.SatsToCentsImmediateSell(tc.sats)
		require.NoError(t, err)
		require.Equal(t, tc.immediateSell, got, "immediate sell %d", tc.sats)

		got, err = q.SatsToCentsFutureBuy(tc.sats, 3600)
		require.NoError(t, err)
		require.Equal(t, tc.futureBuy, got, "future buy %d", tc.sats)

		got, err = q.SatsToCentsFutureSell(tc.sats, 3600)
		require.NoError(t, err)
		require.Equal(t, tc.futureSell, got, "future sell %d", tc.sats)
	}
}

func TestCentsToSatsFixtures(t *testing.T) {
	q := newTestQuoter(t)
	cases := []struct {
		cents         units.UsdCents
		immediateBuy  units.Satoshis
		immediateSell units.Satoshis
		futureBuy     units.Satoshis
		futureSell    units.Satoshis
	}{
		{cents: 4995, immediateBuy: 100_000, immediateSell: 99_402, futureBuy: 100_051, futureSell: 99_352},
		{cents: 5000, immediateBuy: 100_101, immediateSell: 99_502, futureBuy: 100_151, futureSell: 99_452},
		{cents: 1, immediateBuy: 21, immediateSell: 19, futureBuy: 21, futureSell: 19},
		{cents: 100_000, immediateBuy: 2_002_003, immediateSell: 1_990_041, futureBuy: 2_003_005, futureSell: 1_989_048},
	}
	for _, tc := range cases {
		got, err := q.CentsToSatsImmediateBuy(tc.cents)
		require.NoError(t, err)
		require.Equal(t, tc.immediateBuy, got, "immediate buy %d", tc.cents)

		got, err = q.CentsToSatsImmediateSell(tc.cents)
		require.NoError(t, err)
		require.Equal(t, tc.immediateSell, got, "immediate sell %d", tc.cents)

		got, err = q.CentsToSatsFutureBuy(tc.cents, 0)
		require.NoError(t, err)
		require.Equal(t, tc.futureBuy, got, "future buy %d", tc.cents)

		got, err = q.CentsToSatsFutureSell(tc.cents, 0)
		require.NoError(t, err)
		require.Equal(t, tc.futureSell, got, "future sell %d", tc.cents)
	}
}

func TestRoundTripAlwaysLosesValue(t *testing.T) {
	q := newTestQuoter(t)
	for _, sats := range []units.Satoshis{1, 2, 11, 21, 999, 100_000, 123_456_789, 21_000_000 * units.SatsPerBitcoin} {
		cents, err := q.SatsToCentsImmediateBuy(sats)
		require.NoError(t, err)
		back, err := q.CentsToSatsImmediateSell(cents)
		require.NoError(t, err)
		require.Less(t, int64(back), int64(sats), "immediate buy then sell of %d", sats)

		cents, err = q.SatsToCentsFutureBuy(sats, 60)
		require.NoError(t, err)
		back, err = q.CentsToSatsFutureSell(cents, 60)
		require.NoError(t, err)
		require.Less(t, int64(back), int64(sats), "future buy then sell of %d", sats)
	}
	for _, cents := range []units.UsdCents{1, 7, 4995, 1_000_000} {
		sats, err := q.CentsToSatsImmediateSell(cents)
		require.NoError(t, err)
		back, err := q.SatsToCentsImmediateBuy(sats)
		require.NoError(t, err)
		require.Less(t, int64(back), int64(cents), "sell then buy of %d cents", cents)
	}
}

func TestRatesFavourDealer(t *testing.T) {
	q := newTestQuoter(t)
	prices := testPrices()
	bid, err := units.CentsPerSatsFromUsdPerBtc(prices.Bid)
	require.NoError(t, err)
	ask, err := units.CentsPerSatsFromUsdPerBtc(prices.Ask)
	require.NoError(t, err)

	require.Equal(t, -1, q.ImmediateBuyRate().Rat().Cmp(bid.Rat()))
	require.Equal(t, -1, q.FutureBuyRate().Rat().Cmp(bid.Rat()))
	require.Equal(t, 1, q.ImmediateSellRate().Rat().Cmp(ask.Rat()))
	require.Equal(t, 1, q.FutureSellRate().Rat().Cmp(ask.Rat()))

	// delayed settlement never costs the counterparty less than immediate
	require.LessOrEqual(t, q.FutureBuyRate().Rat().Cmp(q.ImmediateBuyRate().Rat()), 0)
	require.GreaterOrEqual(t, q.FutureSellRate().Rat().Cmp(q.ImmediateSellRate().Rat()), 0)
}

func TestFutureEqualsImmediateWhenSpreadsMatch(t *testing.T) {
	fees := testFees()
	fees.DelayedSpread = fees.ImmediateSpread
	q, err := New(testPrices(), fees)
	require.NoError(t, err)
	require.True(t, q.FutureBuyRate().Equal(q.ImmediateBuyRate()))
	require.True(t, q.FutureSellRate().Equal(q.ImmediateSellRate()))
}

func TestMidRateIgnoresFees(t *testing.T) {
	q := newTestQuoter(t)
	require.Equal(t, 0, q.MidRate().Rat().Cmp(big.NewRat(501, 10_000)))

	fees := testFees()
	fees.BaseFee = decimal.RequireFromString("0.01")
	other, err := New(testPrices(), fees)
	require.NoError(t, err)
	require.True(t, q.MidRate().Equal(other.MidRate()))
}

func TestInvalidAmounts(t *testing.T) {
	q := newTestQuoter(t)

	_, err := q.SatsToCentsImmediateBuy(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.SatsToCentsImmediateSell(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.SatsToCentsFutureBuy(1, -1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.SatsToCentsFutureSell(-5, 10)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.CentsToSatsImmediateBuy(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.CentsToSatsImmediateSell(-1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.CentsToSatsFutureBuy(1, -1)
	require.ErrorIs(t, err, ErrInvalidAmount)
	_, err = q.CentsToSatsFutureSell(1, -30)
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestResultOverflow(t *testing.T) {
	prices := Prices{Bid: decimal.RequireFromString("1000000000000"), Ask: decimal.RequireFromString("1000000000000")}
	q, err := New(prices, testFees())
	require.NoError(t, err)
	_, err = q.SatsToCentsImmediateSell(units.Satoshis(1 << 62))
	require.ErrorIs(t, err, ErrInvalidAmount)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Prices{Bid: decimal.Zero, Ask: decimal.NewFromInt(1)}, testFees())
	require.ErrorIs(t, err, ErrInvalidPrice)

	_, err = New(Prices{Bid: decimal.NewFromInt(2), Ask: decimal.NewFromInt(1)}, testFees())
	require.ErrorIs(t, err, ErrInvalidPrice)

	fees := testFees()
	fees.DelayedSpread = decimal.RequireFromString("0.0001")
	_, err = New(testPrices(), fees)
	require.ErrorIs(t, err, ErrInvalidFees)

	_, err = New(testPrices(), Fees{})
	require.ErrorIs(t, err, ErrInvalidFees)

	fees = testFees()
	fees.BaseFee = decimal.RequireFromString("-0.1")
	_, err = New(testPrices(), fees)
	require.ErrorIs(t, err, ErrInvalidFees)

	fees = testFees()
	fees.DelayedSpread = decimal.RequireFromString("0.9995")
	_, err = New(testPrices(), fees)
	require.ErrorIs(t, err, ErrInvalidFees)
}
