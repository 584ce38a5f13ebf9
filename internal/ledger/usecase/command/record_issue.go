package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/internal/ledger/events"
)

// RecordIssueCommand represents the command to record an OUT movement
type RecordIssueCommand struct {
	ItemID uint
	Qty    int64
	Ref    *string
	Meta   domain.Metadata
}

// RecordIssueHandler handles record issue commands
type RecordIssueHandler struct {
	writer ledgerWriter
}

// NewRecordIssueHandler creates a new record issue handler
func NewRecordIssueHandler(tx domain.Transactor, balances *cache.BalanceCache, pub events.Publisher, retrier Retrier) *RecordIssueHandler {
	return &RecordIssueHandler{writer: newLedgerWriter(tx, balances, pub, retrier)}
}

// Handle executes the record issue command. The sufficiency check runs
// against a balance read under the row lock, so two concurrent issues on
// the same item serialize; an issue that would drive the balance negative
// is rejected without appending anything.
func (h *RecordIssueHandler) Handle(ctx context.Context, cmd RecordIssueCommand) (*MovementResult, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	if cmd.Qty <= 0 {
		return nil, fmt.Errorf("issue qty must be positive, got %d: %w", cmd.Qty, domain.ErrInvalidInput)
	}
	return h.writer.record(ctx, cmd.ItemID, domain.MovementOut, cmd.Qty, cmd.Ref, cmd.Meta)
}
