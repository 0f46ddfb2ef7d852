package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("WithdrawToWallet")
	require.NoError(t, err)
	require.Equal(t, WithdrawToWallet, d)

	_, err = ParseDirection("withdrawtowallet")
	require.Error(t, err)
	require.False(t, Direction("").Valid())
}

func TestInFlightTransferJSON(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	data, err := json.Marshal(InFlightTransfer{
		Direction:          DepositOnExchange,
		Address:            "bc1q",
		TransferSizeInSats: 1500,
		Status:             StatusPending,
		CreatedTimestamp:   ts,
		UpdatedTimestamp:   ts,
	})
	require.NoError(t, err)
	require.JSONEq(t, `{
		"direction": "DepositOnExchange",
		"address": "bc1q",
		"transferSizeInSats": 1500,
		"status": "Pending",
		"createdTimestamp": "2024-03-01T12:00:00Z",
		"updatedTimestamp": "2024-03-01T12:00:00Z"
	}`, string(data))

	var back InFlightTransfer
	require.Error(t, json.Unmarshal([]byte(`{"direction":"Sideways"}`), &back))
}
