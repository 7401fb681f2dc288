package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

const (
	DefaultHistoryLimit = 5
	MaxHistoryLimit     = 100
)

// StockHistoryQuery represents the query to read stock movements of an item
type StockHistoryQuery struct {
	Kind   domain.Kind
	ItemID uint
	Limit  int
}

// StockHistoryHandler handles stock history query
type StockHistoryHandler struct {
	stock domain.StockRepository
	items domain.ItemRepository
}

// NewStockHistoryHandler creates a new stock history handler
func NewStockHistoryHandler(stock domain.StockRepository, items domain.ItemRepository) *StockHistoryHandler {
	return &StockHistoryHandler{stock: stock, items: items}
}

// Handle returns the newest movements first.
func (h *StockHistoryHandler) Handle(ctx context.Context, q StockHistoryQuery) ([]domain.StockLog, error) {
	if q.Limit == 0 {
		q.Limit = DefaultHistoryLimit
	}
	if q.Limit < 0 {
		return nil, apperror.Invalid("limit must be positive")
	}
	if q.Limit > MaxHistoryLimit {
		q.Limit = MaxHistoryLimit
	}

	if _, err := h.items.FindByID(ctx, q.Kind, q.ItemID); err != nil {
		return nil, lookupErr(err, string(q.Kind), q.ItemID)
	}

	logs, err := h.stock.History(ctx, q.Kind, q.ItemID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load stock history: %w", err)
	}
	return logs, nil
}
