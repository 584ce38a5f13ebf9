package domain

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MovementType enumerates the three kinds of stock movement. The same set is
// enforced at the storage boundary via a check constraint.
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// Valid reports whether t is one of the enumerated movement types.
func (t MovementType) Valid() bool {
	switch t {
	case MovementIn, MovementOut, MovementAdjust:
		return true
	}
	return false
}

// Metadata is an opaque key/value map attached to a movement. It is stored
// as a JSON column.
type Metadata map[string]any

// Value implements driver.Valuer.
func (m Metadata) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal movement metadata: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *Metadata) Scan(src any) error {
	if src == nil {
		*m = nil
		return nil
	}
	var b []byte
	switch v := src.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return fmt.Errorf("unsupported metadata column type %T", src)
	}
	if len(b) == 0 {
		*m = nil
		return nil
	}
	return json.Unmarshal(b, m)
}

// StockMovement is one entry in the append-only ledger. Rows are immutable
// once written; reversing a movement means appending a compensating one.
// Qty holds a positive magnitude for IN/OUT and a signed non-zero delta for
// ADJUST. The row version is bookkeeping for retried writes only and is not
// load-bearing.
type StockMovement struct {
	ID      uint         `json:"id" gorm:"primaryKey"`
	ItemID  uint         `json:"item_id" gorm:"not null;index"`
	Type    MovementType `json:"type" gorm:"type:varchar(8);not null;check:chk_stock_movements_type,type IN ('IN','OUT','ADJUST')"`
	Qty     int64        `json:"qty" gorm:"not null"`
	Ref     *string      `json:"ref,omitempty"`
	Meta    Metadata     `json:"metadata,omitempty" gorm:"type:text"`
	MovedAt time.Time    `json:"moved_at" gorm:"not null;index"`
	Version int64        `json:"version" gorm:"not null;default:0"`
}

// TableName specifies the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Delta is the signed contribution of this movement to the item balance.
func (m StockMovement) Delta() int64 {
	if m.Type == MovementOut {
		return -m.Qty
	}
	return m.Qty
}

// MovementFilter narrows a movement history listing. Zero-valued fields are
// ignored.
type MovementFilter struct {
	From   *time.Time
	To     *time.Time
	Type   *MovementType
	Limit  int
	Offset int
}

// MovementRepository defines the contract for the movement ledger. Append is
// the only write in normal operation; DeleteByItem exists solely for the
// item-deletion cascade.
type MovementRepository interface {
	Append(ctx context.Context, movement *StockMovement) error
	// Balance folds the item's ledger into its current stock level. With
	// forUpdate set the movement rows are locked for the duration of the
	// surrounding transaction so a sufficiency decision cannot race a
	// concurrent writer.
	Balance(ctx context.Context, itemID uint, forUpdate bool) (int64, error)
	BalancesFor(ctx context.Context, itemIDs []uint) (map[uint]int64, error)
	AllBalances(ctx context.Context) (map[uint]int64, error)
	List(ctx context.Context, itemID uint, filter MovementFilter) ([]StockMovement, int64, error)
	DeleteByItem(ctx context.Context, itemID uint) error
}
