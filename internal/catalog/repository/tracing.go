package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

var tracer = otel.Tracer("catalog-repository")

// TracingStockRepository wraps a StockRepository with spans.
type TracingStockRepository struct {
	next domain.StockRepository
}

// NewTracingStockRepository creates a new repository with tracing
func NewTracingStockRepository(next domain.StockRepository) *TracingStockRepository {
	return &TracingStockRepository{next: next}
}

// Apply with tracing
func (r *TracingStockRepository) Apply(ctx context.Context, kind domain.Kind, itemID uint, op domain.Operation, quantity int, userID *uint) (*domain.Movement, error) {
	ctx, span := tracer.Start(ctx, "repository.StockApply",
		trace.WithAttributes(
			attribute.String("item.kind", string(kind)),
			attribute.Int("item.id", int(itemID)),
			attribute.String("stock.operation", string(op)),
			attribute.Int("stock.quantity", quantity),
		),
	)
	defer span.End()

	movement, err := r.next.Apply(ctx, kind, itemID, op, quantity, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("stock.old_quantity", movement.OldQuantity),
		attribute.Int("stock.new_quantity", movement.NewQuantity),
	)
	return movement, nil
}

// History with tracing
func (r *TracingStockRepository) History(ctx context.Context, kind domain.Kind, itemID uint, limit int) ([]domain.StockLog, error) {
	ctx, span := tracer.Start(ctx, "repository.StockHistory",
		trace.WithAttributes(
			attribute.String("item.kind", string(kind)),
			attribute.Int("item.id", int(itemID)),
			attribute.Int("query.limit", limit),
		),
	)
	defer span.End()

	logs, err := r.next.History(ctx, kind, itemID, limit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("result.count", len(logs)))
	return logs, nil
}
