package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

// ListLinksHandler lists the direct components of a parent item.
type ListLinksHandler struct {
	links domain.LinkRepository
	items domain.ItemRepository
}

// NewListLinksHandler creates a new list links handler
func NewListLinksHandler(links domain.LinkRepository, items domain.ItemRepository) *ListLinksHandler {
	return &ListLinksHandler{links: links, items: items}
}

// Handle executes the list links query
func (h *ListLinksHandler) Handle(ctx context.Context, kind domain.LinkKind, parentID uint) ([]domain.CompositionLink, error) {
	if _, err := h.items.FindByID(ctx, kind.Parent(), parentID); err != nil {
		return nil, lookupErr(err, string(kind.Parent()), parentID)
	}
	links, err := h.links.FindByParent(ctx, kind, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}
	return links, nil
}
