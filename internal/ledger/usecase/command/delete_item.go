package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// DeleteItemCommand represents the command to delete an item
type DeleteItemCommand struct {
	ItemID uint
}

// DeleteItemHandler handles delete item commands
type DeleteItemHandler struct {
	tx       domain.Transactor
	balances *cache.BalanceCache
	retrier  Retrier
}

// NewDeleteItemHandler creates a new delete item handler
func NewDeleteItemHandler(tx domain.Transactor, balances *cache.BalanceCache, retrier Retrier) *DeleteItemHandler {
	return &DeleteItemHandler{tx: tx, balances: balances, retrier: retrier}
}

// Handle executes the delete item command. Movements are deleted before the
// item in the same transaction so no orphan ledger rows survive.
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	if cmd.ItemID == 0 {
		return fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}

	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.tx.WithinTx(ctx, func(repos domain.Repositories) error {
			item, err := repos.Items().FindByIDForUpdate(ctx, cmd.ItemID)
			if err != nil {
				return err
			}
			if err := repos.Movements().DeleteByItem(ctx, item.ID); err != nil {
				return err
			}
			return repos.Items().Delete(ctx, item.ID)
		})
	})
	if err != nil {
		return err
	}

	h.balances.Invalidate(cmd.ItemID)
	logger.Info(ctx).Uint("item_id", cmd.ItemID).Msg("Item deleted with its movement history")
	return nil
}
