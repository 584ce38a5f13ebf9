package command

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// UpdateItemCommand represents the command to partially update an item
type UpdateItemCommand struct {
	ItemID uint
	Update domain.ItemUpdate
}

// UpdateItemHandler handles update item commands
type UpdateItemHandler struct {
	tx      domain.Transactor
	retrier Retrier
}

// NewUpdateItemHandler creates a new update item handler
func NewUpdateItemHandler(tx domain.Transactor, retrier Retrier) *UpdateItemHandler {
	return &UpdateItemHandler{tx: tx, retrier: retrier}
}

// Handle executes the update item command. The update runs under the item
// row lock and bumps the optimistic-lock version like any other mutating
// write, so a racing movement forces a retry.
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.Item, error) {
	if cmd.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	if cmd.Update.MinStock != nil && *cmd.Update.MinStock < 0 {
		return nil, fmt.Errorf("min_stock must be >= 0, got %d: %w", *cmd.Update.MinStock, domain.ErrInvalidInput)
	}

	var updated *domain.Item
	err := h.retrier.Do(ctx, func(ctx context.Context) error {
		return h.tx.WithinTx(ctx, func(repos domain.Repositories) error {
			item, err := repos.Items().FindByIDForUpdate(ctx, cmd.ItemID)
			if err != nil {
				return err
			}
			if err := repos.Items().UpdateFields(ctx, item.ID, cmd.Update); err != nil {
				return err
			}
			if err := repos.Items().BumpVersion(ctx, item.ID, item.Version); err != nil {
				return err
			}
			updated, err = repos.Items().FindByID(ctx, item.ID)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
