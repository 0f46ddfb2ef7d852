package address

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	mainnet := &chaincfg.MainNetParams
	testnet := &chaincfg.TestNet3Params

	require.NoError(t, Validate("1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa", mainnet))
	require.NoError(t, Validate("bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4", mainnet))
	require.NoError(t, Validate("tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", testnet))

	for _, bad := range []string{
		"",
		"   ",
		"tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx",
		"bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t5",
		"hello",
	} {
		require.ErrorIs(t, Validate(bad, mainnet), ErrInvalidAddress, bad)
	}

	require.NoError(t, Validate("anything", nil))
	require.ErrorIs(t, Validate("", nil), ErrInvalidAddress)
}
