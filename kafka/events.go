package kafka

import "time"

// StockMovedEvent is emitted after every stock movement on a catalog item.
type StockMovedEvent struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	Kind           string    `json:"kind"`
	ItemID         uint      `json:"item_id"`
	Operation      string    `json:"operation"`
	Quantity       int       `json:"quantity"`
	OldQuantity    int       `json:"old_quantity"`
	NewQuantity    int       `json:"new_quantity"`
	AlertThreshold int       `json:"alert_threshold"`
	UserID         *uint     `json:"user_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// TaskEvent mirrors one production task log entry.
type TaskEvent struct {
	EventID      string    `json:"event_id"`
	EventType    string    `json:"event_type"`
	TaskID       uint      `json:"task_id"`
	ProductionID uint      `json:"production_id"`
	TemplateID   *uint     `json:"template_id,omitempty"`
	Transition   string    `json:"transition"`
	TotalSeconds int       `json:"total_seconds"`
	UserID       *uint     `json:"user_id,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockMoved     = "stock.moved"
	EventTypeTaskTransition = "task.transition"
)

// Kafka topics
const (
	TopicStockMovements = "atelier-stock-movements"
	TopicTaskEvents     = "atelier-task-events"
)
