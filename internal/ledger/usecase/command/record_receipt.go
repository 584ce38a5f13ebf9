package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
)

// RecordReceiptCommand represents the command to record an IN movement
type RecordReceiptCommand struct {
	ItemID uint
	Qty    int64
	Ref    *string
	Meta   domain.Metadata
}

// RecordReceiptHandler handles record receipt commands
type RecordReceiptHandler struct {
	writer ledgerWriter
}

// NewRecordReceiptHandler creates a new record receipt handler
func NewRecordReceiptHandler(tx domain.Transactor, balances *cache.BalanceCache, pub events.Publisher, retrier Retrier) *RecordReceiptHandler {
	return &RecordReceiptHandler{writer: newLedgerWriter(tx, balances, pub, retrier)}
}

// Handle executes the record receipt command. A negative quantity is
// rejected outright rather than reinterpreted as an issue; callers wanting
// an issue use RecordIssueHandler.
func (h *RecordReceiptHandler) Handle(ctx context.Context, cmd RecordReceiptCommand) (*MovementResult, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	if cmd.Qty <= 0 {
		return nil, fmt.Errorf("receipt qty must be positive, got %d: %w", cmd.Qty, domain.ErrInvalidInput)
	}
	return h.writer.record(ctx, cmd.ItemID, domain.MovementIn, cmd.Qty, cmd.Ref, cmd.Meta)
}
