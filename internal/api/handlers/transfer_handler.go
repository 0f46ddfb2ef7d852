package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/gin-gonic/gin"

	"github.com/thanhnp/dealer-hedge/internal/address"
	"github.com/thanhnp/dealer-hedge/internal/events"
	"github.com/thanhnp/dealer-hedge/internal/ledger"
	"github.com/thanhnp/dealer-hedge/internal/models"
	"github.com/thanhnp/dealer-hedge/pkg/units"
)

const publishTimeout = 5 * time.Second

// TransferLedger is the ledger surface used by the HTTP API
type TransferLedger interface {
	Insert(ctx context.Context, transfer models.InFlightTransfer) (models.InFlightTransfer, error)
	Complete(ctx context.Context, address string) (models.InFlightTransfer, error)
	Get(ctx context.Context, address string) (models.InFlightTransfer, error)
	ListPending(ctx context.Context, direction models.Direction) ([]models.InFlightTransfer, error)
	ListAll(ctx context.Context) ([]models.InFlightTransfer, error)
	Clear(ctx context.Context) error
	PendingTotals(ctx context.Context) (map[models.Direction]units.Satoshis, error)
}

// TransferHandler handles in-flight transfer API requests
type TransferHandler struct {
	ledger    TransferLedger
	publisher events.Publisher
	params    *chaincfg.Params
	logger    *slog.Logger
}

// NewTransferHandler creates a new TransferHandler. A nil params disables
// address validation; a nil publisher disables events.
func NewTransferHandler(l TransferLedger, publisher events.Publisher, params *chaincfg.Params, logger *slog.Logger) *TransferHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferHandler{ledger: l, publisher: publisher, params: params, logger: logger}
}

type insertRequest struct {
	Direction          models.Direction `json:"direction"`
	Address            string           `json:"address"`
	TransferSizeInSats int64            `json:"transferSizeInSats"`
	Memo               string           `json:"memo"`
}

// Insert records a new pending transfer
// POST /api/v1/transfers
func (h *TransferHandler) Insert(c *gin.Context) {
	var req insertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body: "+err.Error())
		return
	}
	addr := strings.TrimSpace(req.Address)
	if err := address.Validate(addr, h.params); err != nil {
		badRequest(c, err.Error())
		return
	}

	stored, err := h.ledger.Insert(c.Request.Context(), models.InFlightTransfer{
		Direction:          req.Direction,
		Address:            addr,
		TransferSizeInSats: units.Satoshis(req.TransferSizeInSats),
		Memo:               req.Memo,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(c, events.NewTransferEvent(events.TypeTransferInserted, stored, time.Now()))
	c.JSON(http.StatusCreated, stored)
}

// Complete marks a pending transfer completed
// POST /api/v1/transfers/:address/complete
func (h *TransferHandler) Complete(c *gin.Context) {
	stored, err := h.ledger.Complete(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}

	h.publish(c, events.NewTransferEvent(events.TypeTransferCompleted, stored, time.Now()))
	c.JSON(http.StatusOK, stored)
}

// Get returns a single transfer
// GET /api/v1/transfers/:address
func (h *TransferHandler) Get(c *gin.Context) {
	transfer, err := h.ledger.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transfer)
}

// List returns transfers, optionally only pending ones of one direction
// GET /api/v1/transfers?status=pending&direction=DepositOnExchange
func (h *TransferHandler) List(c *gin.Context) {
	var direction models.Direction
	if raw := c.Query("direction"); raw != "" {
		parsed, err := models.ParseDirection(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		direction = parsed
	}

	var (
		transfers []models.InFlightTransfer
		err       error
	)
	switch status := strings.ToLower(c.DefaultQuery("status", "all")); status {
	case "pending":
		transfers, err = h.ledger.ListPending(c.Request.Context(), direction)
	case "all":
		transfers, err = h.ledger.ListAll(c.Request.Context())
		if err == nil && direction != "" {
			transfers = filterDirection(transfers, direction)
		}
	default:
		badRequest(c, fmt.Sprintf("unknown status %q, expected pending or all", status))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transfers": transfers,
		"count":     len(transfers),
	})
}

// Clear empties the ledger
// DELETE /api/v1/transfers
func (h *TransferHandler) Clear(c *gin.Context) {
	if err := h.ledger.Clear(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	h.publish(c, events.NewClearedEvent(time.Now()))
	c.Status(http.StatusNoContent)
}

// Exposure returns the pending satoshis per direction
// GET /api/v1/exposure
func (h *TransferHandler) Exposure(c *gin.Context) {
	totals, err := h.ledger.PendingTotals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"pendingSats": totals})
}

// publish runs after the ledger write; a failure is logged and the request
// still succeeds.
func (h *TransferHandler) publish(c *gin.Context, event events.Event) {
	if h.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), publishTimeout)
	defer cancel()
	if err := h.publisher.Publish(ctx, event); err != nil {
		h.logger.Warn("failed to publish ledger event",
			slog.String("type", event.Type),
			slog.String("event_id", event.ID),
			slog.Any("error", err))
	}
}

func filterDirection(transfers []models.InFlightTransfer, direction models.Direction) []models.InFlightTransfer {
	out := make([]models.InFlightTransfer, 0, len(transfers))
	for _, t := range transfers {
		if t.Direction == direction {
			out = append(out, t)
		}
	}
	return out
}

var _ TransferLedger = (*ledger.Ledger)(nil)
