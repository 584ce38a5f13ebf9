package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// LowStockItem pairs an item with its current balance when the balance has
// fallen to or below the item's minimum-stock threshold.
type LowStockItem struct {
	Item    domain.Item `json:"item"`
	Balance int64       `json:"balance"`
}

// LowStockHandler handles low stock report queries
type LowStockHandler struct {
	repos domain.Repositories
}

// NewLowStockHandler creates a new low stock handler
func NewLowStockHandler(repos domain.Repositories) *LowStockHandler {
	return &LowStockHandler{repos: repos}
}

// Handle folds all balances in one pass and reports every item at or below
// its threshold. Items without movements count as balance zero, so a new
// item with a positive min_stock shows up immediately.
func (h *LowStockHandler) Handle(ctx context.Context) ([]LowStockItem, error) {
	items, err := h.repos.Items().FindAll(ctx, -1, 0)
	if err != nil {
		return nil, err
	}
	balances, err := h.repos.Movements().AllBalances(ctx)
	if err != nil {
		return nil, err
	}

	var report []LowStockItem
	for _, item := range items {
		balance := balances[item.ID]
		if balance <= item.MinStock {
			report = append(report, LowStockItem{Item: item, Balance: balance})
		}
	}
	return report, nil
}
