package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

// ListBornesHandler handles list bornes query
type ListBornesHandler struct {
	repo domain.BorneRepository
}

// NewListBornesHandler creates a new list bornes handler
func NewListBornesHandler(repo domain.BorneRepository) *ListBornesHandler {
	return &ListBornesHandler{repo: repo}
}

// Handle returns every borne ordered by name.
func (h *ListBornesHandler) Handle(ctx context.Context) ([]domain.Borne, error) {
	bornes, err := h.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bornes: %w", err)
	}
	return bornes, nil
}

// GetBorneHandler handles get borne query
type GetBorneHandler struct {
	repo domain.BorneRepository
}

// NewGetBorneHandler creates a new get borne handler
func NewGetBorneHandler(repo domain.BorneRepository) *GetBorneHandler {
	return &GetBorneHandler{repo: repo}
}

// Handle executes the get borne query
func (h *GetBorneHandler) Handle(ctx context.Context, id uint) (*domain.Borne, error) {
	borne, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "borne", id)
	}
	return borne, nil
}
