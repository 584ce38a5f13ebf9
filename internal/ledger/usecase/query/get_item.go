package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// GetItemQuery represents the query to get an item
type GetItemQuery struct {
	ItemID uint
}

// GetItemHandler handles get item queries
type GetItemHandler struct {
	repos domain.Repositories
}

// NewGetItemHandler creates a new get item handler
func NewGetItemHandler(repos domain.Repositories) *GetItemHandler {
	return &GetItemHandler{repos: repos}
}

// Handle executes the get item query
func (h *GetItemHandler) Handle(ctx context.Context, q GetItemQuery) (*domain.Item, error) {
	if q.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	return h.repos.Items().FindByID(ctx, q.ItemID)
}
