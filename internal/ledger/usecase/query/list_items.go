package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ListItemsQuery represents the query to list items with pagination
type ListItemsQuery struct {
	Page int
	Size int
}

// ListItemsHandler handles list items queries
type ListItemsHandler struct {
	repos domain.Repositories
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(repos domain.Repositories) *ListItemsHandler {
	return &ListItemsHandler{repos: repos}
}

// Handle executes the list items query. Page numbers start at 1; size is
// clamped to [1, 200].
func (h *ListItemsHandler) Handle(ctx context.Context, q ListItemsQuery) ([]domain.Item, error) {
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.Size
	if size <= 0 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return h.repos.Items().FindAll(ctx, size, (page-1)*size)
}
