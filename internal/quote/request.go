package quote

import (
	"fmt"

	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/pkg/units"
)

// Side is the dealer's side of a quote.
type Side string

const (
	// SideBuy means the dealer buys BTC from the counterparty.
	SideBuy Side = "buy"
	// SideSell means the dealer sells BTC to the counterparty.
	SideSell Side = "sell"
)

// Settlement labels a request as immediate or future.
type Settlement string

const (
	SettlementImmediate Settlement = "immediate"
	SettlementFuture    Settlement = "future"
)

// SettlementOf reports the settlement a request asks for.
func SettlementOf(req models.QuoteRequest) Settlement {
	if req.TimeToExpiryInSeconds == nil {
		return SettlementImmediate
	}
	return SettlementFuture
}

// validateRequest checks that exactly one non-negative amount is present and
// that a supplied expiry is non-negative.
func validateRequest(req models.QuoteRequest) error {
	if (req.AmountInSats == nil) == (req.AmountInCents == nil) {
		return fmt.Errorf("%w: exactly one of amountInSats and amountInCents is required", ErrInvalidAmount)
	}
	if req.AmountInSats != nil && *req.AmountInSats < 0 {
		return fmt.Errorf("%w: amountInSats %d", ErrInvalidAmount, *req.AmountInSats)
	}
	if req.AmountInCents != nil && *req.AmountInCents < 0 {
		return fmt.Errorf("%w: amountInCents %d", ErrInvalidAmount, *req.AmountInCents)
	}
	if req.TimeToExpiryInSeconds != nil && *req.TimeToExpiryInSeconds < 0 {
		return fmt.Errorf("%w: timeToExpiryInSeconds %d", ErrInvalidAmount, *req.TimeToExpiryInSeconds)
	}
	return nil
}

// QuoteBuy answers a request for the dealer's buy side.
func (q *Quoter) QuoteBuy(req models.QuoteRequest) (models.QuoteResponse, error) {
	if err := validateRequest(req); err != nil {
		return models.QuoteResponse{}, err
	}
	if req.AmountInSats != nil {
		sats := units.Satoshis(*req.AmountInSats)
		var cents units.UsdCents
		var err error
		if req.TimeToExpiryInSeconds == nil {
			cents, err = q.SatsToCentsImmediateBuy(sats)
		} else {
			cents, err = q.SatsToCentsFutureBuy(sats, units.Seconds(*req.TimeToExpiryInSeconds))
		}
		return centsResponse(cents, err)
	}

	cents := units.UsdCents(*req.AmountInCents)
	var sats units.Satoshis
	var err error
	if req.TimeToExpiryInSeconds == nil {
		sats, err = q.CentsToSatsImmediateBuy(cents)
	} else {
		sats, err = q.CentsToSatsFutureBuy(cents, units.Seconds(*req.TimeToExpiryInSeconds))
	}
	return satsResponse(sats, err)
}

// QuoteSell answers a request for the dealer's sell side.
func (q *Quoter) QuoteSell(req models.QuoteRequest) (models.QuoteResponse, error) {
	if err := validateRequest(req); err != nil {
		return models.QuoteResponse{}, err
	}
	if req.AmountInSats != nil {
		sats := units.Satoshis(*req.AmountInSats)
		var cents units.UsdCents
		var err error
		if req.TimeToExpiryInSeconds == nil {
			cents, err = q.SatsToCentsImmediateSell(sats)
		} else {
			cents, err = q.SatsToCentsFutureSell(sats, units.Seconds(*req.TimeToExpiryInSeconds))
		}
		return centsResponse(cents, err)
	}

	cents := units.UsdCents(*req.AmountInCents)
	var sats units.Satoshis
	var err error
	if req.TimeToExpiryInSeconds == nil {
		sats, err = q.CentsToSatsImmediateSell(cents)
	} else {
		sats, err = q.CentsToSatsFutureSell(cents, units.Seconds(*req.TimeToExpiryInSeconds))
	}
	return satsResponse(sats, err)
}

func centsResponse(cents units.UsdCents, err error) (models.QuoteResponse, error) {
	if err != nil {
		return models.QuoteResponse{}, err
	}
	return models.QuoteResponse{Amount: int64(cents), Unit: models.UnitCents}, nil
}

func satsResponse(sats units.Satoshis, err error) (models.QuoteResponse, error) {
	if err != nil {
		return models.QuoteResponse{}, err
	}
	return models.QuoteResponse{Amount: int64(sats), Unit: models.UnitSats}, nil
}
