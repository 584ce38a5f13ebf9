package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/stock-ledger/internal/ledger/domain"
)

// CreateItemCommand represents the command to create an item
type CreateItemCommand struct {
	SKU      string
	Name     string
	Category *string
	Unit     string
	MinStock int64
}

// CreateItemHandler handles create item commands
type CreateItemHandler struct {
	repos domain.Repositories
}

// NewCreateItemHandler creates a new create item handler
func NewCreateItemHandler(repos domain.Repositories) *CreateItemHandler {
	return &CreateItemHandler{repos: repos}
}

// Handle executes the create item command. SKU uniqueness is enforced by
// the storage constraint; a violation surfaces as ErrDuplicateSKU.
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.Item, error) {
	sku := strings.TrimSpace(cmd.SKU)
	if sku == "" {
		return nil, fmt.Errorf("sku is required: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(cmd.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrInvalidInput)
	}
	if cmd.MinStock < 0 {
		return nil, fmt.Errorf("min_stock must be >= 0, got %d: %w", cmd.MinStock, domain.ErrInvalidInput)
	}
	if cmd.Unit == "" {
		cmd.Unit = "pcs"
	}

	item := &domain.Item{
		SKU:      sku,
		Name:     cmd.Name,
		Category: cmd.Category,
		Unit:     cmd.Unit,
		MinStock: cmd.MinStock,
	}
	if err := h.repos.Items().Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}
