package domain

import (
	"time"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

// Operation is the direction of a stock movement.
type Operation string

const (
	OperationAdd    Operation = "ADD"
	OperationRemove Operation = "REMOVE"
)

// ParseOperation validates s as a stock operation.
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OperationAdd, OperationRemove:
		return Operation(s), nil
	}
	return "", apperror.Invalid("operation must be ADD or REMOVE")
}

// StockLog is the append-only audit record of one stock movement.
type StockLog struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Kind      Kind      `json:"kind" gorm:"type:varchar(32);not null;index:idx_stock_log_item"`
	ItemID    uint      `json:"itemId" gorm:"not null;index:idx_stock_log_item"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	Operation Operation `json:"operation" gorm:"type:varchar(8);not null"`
	UserID    *uint     `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt" gorm:"index"`
}

func (StockLog) TableName() string {
	return "stock_logs"
}

// Movement is the outcome of an applied stock movement.
type Movement struct {
	ID             uint `json:"id"`
	Kind           Kind `json:"kind"`
	OldQuantity    int  `json:"oldQuantity"`
	NewQuantity    int  `json:"newQuantity"`
	AlertThreshold int  `json:"alertThreshold"`
}

// BelowThreshold reports whether the movement left the item at or under its
// alert threshold.
func (m Movement) BelowThreshold() bool {
	return m.NewQuantity <= m.AlertThreshold
}

// ApplyMovement computes the stock level after moving quantity units. Stock
// never goes below zero.
func ApplyMovement(current int, op Operation, quantity int) (int, error) {
	if quantity <= 0 {
		return 0, apperror.Invalid("quantity must be greater than zero")
	}
	switch op {
	case OperationAdd:
		return current + quantity, nil
	case OperationRemove:
		if quantity > current {
			return 0, apperror.Invalid("insufficient stock: %d available, %d requested", current, quantity)
		}
		return current - quantity, nil
	}
	return 0, apperror.Invalid("operation must be ADD or REMOVE")
}
