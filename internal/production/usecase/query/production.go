package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// TaskLogLimit is the number of log entries loaded per task when a
// production is returned.
const TaskLogLimit = 10

// GetProductionHandler handles get production query
type GetProductionHandler struct {
	productions domain.ProductionRepository
}

// NewGetProductionHandler creates a new get production handler
func NewGetProductionHandler(productions domain.ProductionRepository) *GetProductionHandler {
	return &GetProductionHandler{productions: productions}
}

// Handle returns the production with lines, tasks, template BOMs and the
// latest task logs.
func (h *GetProductionHandler) Handle(ctx context.Context, id uint) (*domain.Production, error) {
	production, err := h.productions.FindByID(ctx, id, TaskLogLimit)
	if err != nil {
		return nil, lookupErr(err, "production", id)
	}
	return production, nil
}

// ListProductionsQuery represents the query to list productions
type ListProductionsQuery struct {
	Status *domain.Status
}

// ListProductionsHandler handles list productions query
type ListProductionsHandler struct {
	productions domain.ProductionRepository
}

// NewListProductionsHandler creates a new list productions handler
func NewListProductionsHandler(productions domain.ProductionRepository) *ListProductionsHandler {
	return &ListProductionsHandler{productions: productions}
}

// Handle returns productions newest first.
func (h *ListProductionsHandler) Handle(ctx context.Context, q ListProductionsQuery) ([]domain.Production, error) {
	productions, err := h.productions.FindAll(ctx, q.Status)
	if err != nil {
		return nil, fmt.Errorf("failed to list productions: %w", err)
	}
	return productions, nil
}

func lookupErr(err error, what string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}
