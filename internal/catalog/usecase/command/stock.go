package command

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// StockPublisher receives every applied stock movement.
type StockPublisher interface {
	PublishStockMoved(ctx context.Context, event kafka.StockMovedEvent) error
}

// MoveStockCommand adds or removes Quantity units of an item.
type MoveStockCommand struct {
	Kind      domain.Kind
	ItemID    uint
	Operation domain.Operation
	Quantity  int
	UserID    *uint
}

// MoveStockHandler is the only way item quantities change.
type MoveStockHandler struct {
	repo      domain.StockRepository
	publisher StockPublisher
}

// NewMoveStockHandler creates a new stock movement handler. publisher may be nil.
func NewMoveStockHandler(repo domain.StockRepository, publisher StockPublisher) *MoveStockHandler {
	return &MoveStockHandler{repo: repo, publisher: publisher}
}

// Handle executes the stock movement command
func (h *MoveStockHandler) Handle(ctx context.Context, cmd MoveStockCommand) (*domain.Movement, error) {
	movement, err := h.repo.Apply(ctx, cmd.Kind, cmd.ItemID, cmd.Operation, cmd.Quantity, cmd.UserID)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, lookupErr(err, string(cmd.Kind), cmd.ItemID)
		}
		return nil, err
	}

	metrics.StockMovements.WithLabelValues(string(cmd.Kind), string(cmd.Operation)).Inc()
	logger.Info(ctx).
		Str("kind", string(cmd.Kind)).
		Uint("item_id", cmd.ItemID).
		Str("operation", string(cmd.Operation)).
		Int("quantity", cmd.Quantity).
		Int("old_quantity", movement.OldQuantity).
		Int("new_quantity", movement.NewQuantity).
		Msg("Stock moved")

	if h.publisher != nil {
		event := kafka.StockMovedEvent{
			Kind:           string(cmd.Kind),
			ItemID:         cmd.ItemID,
			Operation:      string(cmd.Operation),
			Quantity:       cmd.Quantity,
			OldQuantity:    movement.OldQuantity,
			NewQuantity:    movement.NewQuantity,
			AlertThreshold: movement.AlertThreshold,
			UserID:         cmd.UserID,
		}
		// The movement is committed; a lost notification is logged, not returned.
		if err := h.publisher.PublishStockMoved(ctx, event); err != nil {
			logger.Warn(ctx).Err(fmt.Errorf("publish stock movement: %w", err)).Msg("Stock event not delivered")
		}
	}
	return movement, nil
}
