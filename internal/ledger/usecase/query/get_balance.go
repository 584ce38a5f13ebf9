package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/ledger/cache"
	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// GetBalanceQuery represents the query for an item's current balance
type GetBalanceQuery struct {
	ItemID uint
}

// BalanceInfo is the balance projection returned to callers.
type BalanceInfo struct {
	ItemID       uint   `json:"item_id"`
	Balance      int64  `json:"balance"`
	MinStock     int64  `json:"min_stock"`
	NeedsRestock bool   `json:"needs_restock"`
	Unit         string `json:"unit"`
	Version      int64  `json:"version"`
}

// GetBalanceHandler handles get balance queries
type GetBalanceHandler struct {
	repos    domain.Repositories
	balances *cache.BalanceCache
}

// NewGetBalanceHandler creates a new get balance handler
func NewGetBalanceHandler(repos domain.Repositories, balances *cache.BalanceCache) *GetBalanceHandler {
	return &GetBalanceHandler{repos: repos, balances: balances}
}

// Handle executes the get balance query. Reads never take the item lock:
// the cache is consulted first and a miss falls back to an unlocked fold of
// the ledger. An item with no movements has balance zero.
func (h *GetBalanceHandler) Handle(ctx context.Context, q GetBalanceQuery) (*BalanceInfo, error) {
	if q.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}

	item, err := h.repos.Items().FindByID(ctx, q.ItemID)
	if err != nil {
		return nil, err
	}

	balance, ok := h.balances.Get(item.ID)
	if !ok {
		balance, err = h.repos.Movements().Balance(ctx, item.ID, false)
		if err != nil {
			return nil, err
		}
		h.balances.Set(item.ID, balance)
	}

	return &BalanceInfo{
		ItemID:       item.ID,
		Balance:      balance,
		MinStock:     item.MinStock,
		NeedsRestock: balance <= item.MinStock,
		Unit:         item.Unit,
		Version:      item.Version,
	}, nil
}
