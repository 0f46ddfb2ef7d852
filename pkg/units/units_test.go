package units

import (
	"encoding/json"
	"math/big"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSatoshisString(t *testing.T) {
	require.Contains(t, Satoshis(100_000).String(), "BTC")
	require.Equal(t, 0.001, Satoshis(100_000).BTC())
}

func TestUsdCentsString(t *testing.T) {
	require.Equal(t, "49.95 USD", UsdCents(4995).String())
	require.Equal(t, "0.05 USD", UsdCents(5).String())
}

func TestSecondsDuration(t *testing.T) {
	require.Equal(t, 90*time.Second, Seconds(90).Duration())
	require.Equal(t, Seconds(2), SecondsFromDuration(2500*time.Millisecond))
	require.True(t, Seconds(-1).IsNegative())
}

func TestCentsPerSatsFromUsdPerBtc(t *testing.T) {
	ratio, err := CentsPerSatsFromUsdPerBtc(decimal.RequireFromString("50100"))
	require.NoError(t, err)
	// 50100 USD/BTC * 100 cents / 1e8 sats
	require.Equal(t, 0, ratio.Rat().Cmp(big.NewRat(501, 10_000)))
	require.Equal(t, "0.0501", ratio.Decimal(4).String())
}

func TestCentsPerSatsRejectsNonPositive(t *testing.T) {
	_, err := NewCentsPerSatsRatio(big.NewRat(0, 1))
	require.ErrorIs(t, err, ErrNonPositiveRatio)
	_, err = NewCentsPerSatsRatio(big.NewRat(-1, 3))
	require.ErrorIs(t, err, ErrNonPositiveRatio)
	_, err = NewCentsPerSatsRatio(nil)
	require.ErrorIs(t, err, ErrNonPositiveRatio)
	require.True(t, CentsPerSatsRatio{}.IsZero())
}

func TestCentsPerSatsJSON(t *testing.T) {
	ratio, err := NewCentsPerSatsRatio(big.NewRat(1, 4))
	require.NoError(t, err)
	data, err := json.Marshal(ratio)
	require.NoError(t, err)
	require.JSONEq(t, `"0.25"`, string(data))

	var decoded CentsPerSatsRatio
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.True(t, ratio.Equal(decoded))
}
