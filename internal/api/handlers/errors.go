package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/thanhnp/dealer-hedge/internal/ledger"
	"github.com/thanhnp/dealer-hedge/internal/quote"
)

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrAlreadyExists), errors.Is(err, ledger.ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, ledger.ErrDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidTransfer),
		errors.Is(err, quote.ErrInvalidAmount),
		errors.Is(err, quote.ErrInvalidPrice):
		return http.StatusBadRequest
	case errors.Is(err, quote.ErrTickerUnavailable),
		errors.Is(err, quote.ErrTickerStale),
		errors.Is(err, ledger.ErrPersistence):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
