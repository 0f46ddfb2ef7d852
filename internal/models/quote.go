package models

// Unit names returned in quote responses
const (
	UnitCents = "cents"
	UnitSats  = "sats"
)

// QuoteRequest asks for a conversion of exactly one of the two amounts.
// A nil TimeToExpiryInSeconds requests an immediate quote.
type QuoteRequest struct {
	AmountInSats          *int64 `json:"amountInSats,omitempty"`
	AmountInCents         *int64 `json:"amountInCents,omitempty"`
	TimeToExpiryInSeconds *int64 `json:"timeToExpiryInSeconds,omitempty"`
}

// QuoteResponse carries the converted amount and its unit
type QuoteResponse struct {
	Amount int64  `json:"amount"`
	Unit   string `json:"unit"`
}
