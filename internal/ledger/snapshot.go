package ledger

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/pkg/semver"
)

// SnapshotVersion is the format written by this package. Snapshots with a
// different major version are refused.
var SnapshotVersion = semver.MustParse("1.0.0")

var (
	// ErrIncompatibleSnapshot is returned for snapshots written in a format
	// this build cannot read.
	ErrIncompatibleSnapshot = errors.New("incompatible snapshot version")
	// ErrCorruptSnapshot is returned when a snapshot does not decode into a
	// consistent address to transfer mapping.
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

type transfers map[string]models.InFlightTransfer

type snapshot struct {
	Version   semver.Version `json:"version"`
	Transfers transfers      `json:"transfers"`
}

func encodeSnapshot(entries transfers) ([]byte, error) {
	if entries == nil {
		entries = transfers{}
	}
	return json.Marshal(snapshot{Version: *SnapshotVersion, Transfers: entries})
}

// decodeSnapshot accepts the versioned envelope as well as the bare
// address map written by earlier deployments.
func decodeSnapshot(data []byte) (transfers, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return transfers{}, nil
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	var entries transfers
	if raw, ok := probe["version"]; ok && len(raw) > 0 && raw[0] == '"' {
		var snap snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
		}
		if !snap.Version.CompatibleWith(SnapshotVersion) {
			return nil, fmt.Errorf("%w: found %s, supported %s", ErrIncompatibleSnapshot, snap.Version.String(), SnapshotVersion.String())
		}
		entries = snap.Transfers
	} else if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}

	if entries == nil {
		entries = transfers{}
	}
	for address, t := range entries {
		if t.Address != address {
			return nil, fmt.Errorf("%w: entry %q carries address %q", ErrCorruptSnapshot, address, t.Address)
		}
		switch {
		case !t.Status.Valid():
			return nil, fmt.Errorf("%w: entry %q has status %q", ErrCorruptSnapshot, address, t.Status)
		case !t.Direction.Valid():
			return nil, fmt.Errorf("%w: entry %q has direction %q", ErrCorruptSnapshot, address, t.Direction)
		case t.TransferSizeInSats <= 0:
			return nil, fmt.Errorf("%w: entry %q has size %d sats", ErrCorruptSnapshot, address, int64(t.TransferSizeInSats))
		}
	}
	return entries, nil
}
