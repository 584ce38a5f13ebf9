package query

import (
	"context"
	"fmt"
	"time"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

const (
	defaultMovementLimit = 100
	maxMovementLimit     = 1000
)

// ListMovementsQuery represents the query for an item's movement history
type ListMovementsQuery struct {
	ItemID uint
	From   *time.Time
	To     *time.Time
	Type   *domain.MovementType
	Limit  int
	Offset int
}

// MovementPage is one page of movement history, newest first.
type MovementPage struct {
	Movements []domain.StockMovement `json:"movements"`
	Total     int64                  `json:"total"`
}

// ListMovementsHandler handles list movements queries
type ListMovementsHandler struct {
	repos domain.Repositories
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repos domain.Repositories) *ListMovementsHandler {
	return &ListMovementsHandler{repos: repos}
}

// Handle executes the list movements query. The limit is clamped to
// [1, 1000] to bound result size.
func (h *ListMovementsHandler) Handle(ctx context.Context, q ListMovementsQuery) (*MovementPage, error) {
	if q.ItemID == 0 {
		return nil, fmt.Errorf("item_id is required: %w", domain.ErrInvalidInput)
	}
	if q.Type != nil && !q.Type.Valid() {
		return nil, fmt.Errorf("unknown movement type %q: %w", *q.Type, domain.ErrInvalidInput)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}
	if limit > maxMovementLimit {
		limit = maxMovementLimit
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	movements, total, err := h.repos.Movements().List(ctx, q.ItemID, domain.MovementFilter{
		From:   q.From,
		To:     q.To,
		Type:   q.Type,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, err
	}
	return &MovementPage{Movements: movements, Total: total}, nil
}
