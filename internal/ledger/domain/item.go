package domain

import (
	"context"
	"time"
)

// Item represents a tracked inventory item. Its stock level is never stored
// on the row itself; it is derived from the movement ledger. Version is the
// optimistic-lock counter and is bumped on every item update and on every
// accepted movement against the item.
type Item struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SKU       string    `json:"sku" gorm:"uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Category  *string   `json:"category,omitempty"`
	Unit      string    `json:"unit" gorm:"not null;default:'pcs'"`
	MinStock  int64     `json:"min_stock" gorm:"not null;default:0"`
	Version   int64     `json:"version" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Item) TableName() string {
	return "items"
}

// ItemUpdate carries the mutable item fields for partial updates. Nil
// pointers leave the current value untouched.
type ItemUpdate struct {
	Name     *string
	Category *string
	Unit     *string
	MinStock *int64
}

// ItemRepository defines the contract for item data access
type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	FindByID(ctx context.Context, id uint) (*Item, error)
	// FindByIDForUpdate locks the item row for the duration of the
	// surrounding transaction. Must only be called inside a transaction.
	FindByIDForUpdate(ctx context.Context, id uint) (*Item, error)
	FindBySKU(ctx context.Context, sku string) (*Item, error)
	FindAll(ctx context.Context, limit, offset int) ([]Item, error)
	Categories(ctx context.Context) ([]string, error)
	UpdateFields(ctx context.Context, id uint, update ItemUpdate) error
	// BumpVersion increments the optimistic-lock counter. It fails with
	// ErrConflict when the row no longer carries fromVersion.
	BumpVersion(ctx context.Context, id uint, fromVersion int64) error
	Delete(ctx context.Context, id uint) error
}
