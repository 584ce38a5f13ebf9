package events

import "time"

// MovementRecordedEvent is published after a stock movement commits. It is
// the audit trail of the ledger: one event per accepted write.
type MovementRecordedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	ItemID      uint      `json:"item_id"`
	SKU         string    `json:"sku"`
	MovementID  uint      `json:"movement_id"`
	Type        string    `json:"type"`
	Qty         int64     `json:"qty"`
	Ref         string    `json:"ref,omitempty"`
	Balance     int64     `json:"balance"`
	ItemVersion int64     `json:"item_version"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeMovementRecorded = "stock.movement.recorded"
)

// Kafka topics
const (
	TopicStockMovements = "stock-movements"
)
