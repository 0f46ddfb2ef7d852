package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/internal/storage"
)

func TestSnapshotRoundTripIsVersioned(t *testing.T) {
	data, err := encodeSnapshot(transfers{"A": deposit("A", 10)})
	require.NoError(t, err)
	require.Contains(t, string(data), `"version":"1.0.0"`)

	entries, err := decodeSnapshot(data)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, models.DepositOnExchange, entries["A"].Direction)
}

func TestDecodeLegacyBareMap(t *testing.T) {
	legacy := `{"A":{"direction":"WithdrawToWallet","address":"A","transferSizeInSats":42,"status":"Pending","createdTimestamp":"2024-03-01T12:00:00Z","updatedTimestamp":"2024-03-01T12:00:00Z"}}`
	entries, err := decodeSnapshot([]byte(legacy))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.EqualValues(t, 42, entries["A"].TransferSizeInSats)
	require.True(t, entries["A"].IsPending())
}

func TestDecodeEmptyAndNullSnapshots(t *testing.T) {
	for _, raw := range []string{"", "  ", "{}", `{"version":"1.2.0","transfers":null}`} {
		entries, err := decodeSnapshot([]byte(raw))
		require.NoError(t, err, raw)
		require.Empty(t, entries, raw)
		require.NotNil(t, entries, raw)
	}
}

func TestDecodeRejectsIncompatibleVersion(t *testing.T) {
	_, err := decodeSnapshot([]byte(`{"version":"2.0.0","transfers":{}}`))
	require.ErrorIs(t, err, ErrIncompatibleSnapshot)
}

func TestDecodeRejectsMismatchedKeys(t *testing.T) {
	raw := `{"version":"1.0.0","transfers":{"A":{"direction":"DepositOnExchange","address":"B","transferSizeInSats":1,"status":"Pending"}}}`
	_, err := decodeSnapshot([]byte(raw))
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestDecodeRejectsUnknownDirection(t *testing.T) {
	raw := `{"A":{"direction":"Sideways","address":"A","transferSizeInSats":1,"status":"Pending"}}`
	_, err := decodeSnapshot([]byte(raw))
	require.ErrorIs(t, err, ErrCorruptSnapshot)
}

func TestDecodeRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"unknown status":    `{"A":{"direction":"DepositOnExchange","address":"A","transferSizeInSats":1,"status":"Bogus"}}`,
		"missing status":    `{"A":{"direction":"DepositOnExchange","address":"A","transferSizeInSats":1}}`,
		"missing direction": `{"A":{"address":"A","transferSizeInSats":1,"status":"Pending"}}`,
		"zero size":         `{"A":{"direction":"DepositOnExchange","address":"A","transferSizeInSats":0,"status":"Pending"}}`,
		"negative size":     `{"version":"1.0.0","transfers":{"A":{"direction":"WithdrawToWallet","address":"A","transferSizeInSats":-5,"status":"Completed"}}}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decodeSnapshot([]byte(raw))
			require.ErrorIs(t, err, ErrCorruptSnapshot)
		})
	}
}

func TestLedgerRefusesCorruptEntry(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []byte(`{"version":"1.0.0","transfers":{"A":{"address":"A","status":"Bogus","transferSizeInSats":-5}}}`)))

	l := New(store)
	_, err := l.ListAll(ctx)
	require.ErrorIs(t, err, ErrCorruptSnapshot)

	_, err = l.Complete(ctx, "A")
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, ErrCorruptSnapshot)
	require.NotErrorIs(t, err, ErrAlreadyCompleted)
}

func TestLedgerRefusesIncompatibleSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	require.NoError(t, store.Write(ctx, []byte(`{"version":"2.0.0","transfers":{}}`)))

	_, err := New(store).Insert(ctx, deposit("A", 1))
	require.ErrorIs(t, err, ErrPersistence)
	require.ErrorIs(t, err, ErrIncompatibleSnapshot)
}
