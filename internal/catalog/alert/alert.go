// Package alert raises low-stock alerts from stock movement events.
package alert

import (
	"context"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/kafka"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// Checker flags movements that leave an item at or below its threshold.
type Checker struct {
	raised func(event kafka.StockMovedEvent)
}

func NewChecker() *Checker {
	return &Checker{}
}

// Handle is registered on the Kafka consumer for stock movement events.
func (c *Checker) Handle(ctx context.Context, event kafka.StockMovedEvent) error {
	if event.Operation != "REMOVE" || event.NewQuantity > event.AlertThreshold {
		return nil
	}

	metrics.StockAlerts.WithLabelValues(event.Kind).Inc()
	logger.Warn(ctx).
		Str("kind", event.Kind).
		Uint("item_id", event.ItemID).
		Int("quantity", event.NewQuantity).
		Int("alert_threshold", event.AlertThreshold).
		Msg("Stock at or below alert threshold")

	if c.raised != nil {
		c.raised(event)
	}
	return nil
}

// PublishStockMoved checks the event in process. It stands in for the Kafka
// publisher when no broker is configured.
func (c *Checker) PublishStockMoved(ctx context.Context, event kafka.StockMovedEvent) error {
	return c.Handle(ctx, event)
}
