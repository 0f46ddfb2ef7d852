// Package address checks transfer addresses against a Bitcoin network.
package address

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// ErrInvalidAddress is returned for addresses that do not decode for the
// configured network
var ErrInvalidAddress = errors.New("invalid address")

// Validate returns nil when addr is a well-formed address of params' network.
// A nil params only checks that addr is non-empty.
func Validate(addr string, params *chaincfg.Params) error {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return fmt.Errorf("%w: address is required", ErrInvalidAddress)
	}
	if params == nil {
		return nil
	}
	decoded, err := btcutil.DecodeAddress(addr, params)
	if err != nil {
		return fmt.Errorf("%w: %q on %s: %v", ErrInvalidAddress, addr, params.Name, err)
	}
	if !decoded.IsForNet(params) {
		return fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, addr, params.Name)
	}
	return nil
}
