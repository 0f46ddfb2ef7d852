package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thanhnp/dealer-hedge/pkg/units"
)

// Direction identifies which way funds move between the wallet and the exchange
type Direction string

const (
	// WithdrawToWallet moves funds from the exchange back to the dealer wallet
	WithdrawToWallet Direction = "WithdrawToWallet"
	// DepositOnExchange moves funds from the dealer wallet onto the exchange
	DepositOnExchange Direction = "DepositOnExchange"
)

// Valid reports whether d is one of the known directions
func (d Direction) Valid() bool {
	return d == WithdrawToWallet || d == DepositOnExchange
}

// ParseDirection parses a direction name
func ParseDirection(s string) (Direction, error) {
	d := Direction(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown transfer direction %q", s)
	}
	return d, nil
}

// UnmarshalJSON rejects unknown directions
func (d *Direction) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDirection(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// TransferStatus is the lifecycle state of an in-flight transfer
type TransferStatus string

const (
	// StatusPending is the initial state
	StatusPending TransferStatus = "Pending"
	// StatusCompleted is terminal
	StatusCompleted TransferStatus = "Completed"
)

// Valid reports whether s is one of the known lifecycle states
func (s TransferStatus) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// InFlightTransfer is a wallet/exchange fund movement that has been
// initiated but not necessarily confirmed
type InFlightTransfer struct {
	Direction          Direction      `json:"direction"`
	Address            string         `json:"address"`
	TransferSizeInSats units.Satoshis `json:"transferSizeInSats"`
	Memo               string         `json:"memo,omitempty"`
	Status             TransferStatus `json:"status"`
	CreatedTimestamp   time.Time      `json:"createdTimestamp"`
	UpdatedTimestamp   time.Time      `json:"updatedTimestamp"`
}

// IsPending reports whether the transfer is still awaiting confirmation
func (t InFlightTransfer) IsPending() bool {
	return t.Status == StatusPending
}
