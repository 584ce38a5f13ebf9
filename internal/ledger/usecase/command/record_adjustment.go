package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
)

// RecordAdjustmentCommand represents the command to record an ADJUST
// movement. Qty is a signed delta and may be negative.
type RecordAdjustmentCommand struct {
	ItemID uint
	Qty    int64
	Ref    *string
	Meta   domain.Metadata
}

// RecordAdjustmentHandler handles record adjustment commands
type RecordAdjustmentHandler struct {
	writer ledgerWriter
}

// NewRecordAdjustmentHandler creates a new record adjustment handler
func NewRecordAdjustmentHandler(tx domain.Transactor, balances *cache.BalanceCache, pub events.Publisher, retrier Retrier) *RecordAdjustmentHandler {
	return &RecordAdjustmentHandler{writer: newLedgerWriter(tx, balances, pub, retrier)}
}

// Handle executes the record adjustment command. A zero delta is rejected
// before any storage interaction.
func (h *RecordAdjustmentHandler) Handle(ctx context.Context, cmd RecordAdjustmentCommand) (*MovementResult, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	if cmd.Qty == 0 {
		return nil, fmt.Errorf("adjustment qty must be non-zero: %w", domain.ErrInvalidInput)
	}
	return h.writer.record(ctx, cmd.ItemID, domain.MovementAdjust, cmd.Qty, cmd.Ref, cmd.Meta)
}
