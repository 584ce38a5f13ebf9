package query

import (
	"context"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// ListCategoriesHandler handles list categories queries
type ListCategoriesHandler struct {
	repos domain.Repositories
}

// NewListCategoriesHandler creates a new list categories handler
func NewListCategoriesHandler(repos domain.Repositories) *ListCategoriesHandler {
	return &ListCategoriesHandler{repos: repos}
}

// Handle returns the distinct non-empty categories, sorted.
func (h *ListCategoriesHandler) Handle(ctx context.Context) ([]string, error) {
	return h.repos.Items().Categories(ctx)
}
