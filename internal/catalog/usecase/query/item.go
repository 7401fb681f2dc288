package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// SearchLimit caps search results.
const SearchLimit = 5

func lookupErr(err error, what string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

// GetItemHandler handles get item query
type GetItemHandler struct {
	repo domain.ItemRepository
}

// NewGetItemHandler creates a new get item handler
func NewGetItemHandler(repo domain.ItemRepository) *GetItemHandler {
	return &GetItemHandler{repo: repo}
}

// Handle executes the get item query
func (h *GetItemHandler) Handle(ctx context.Context, kind domain.Kind, id uint) (*domain.Item, error) {
	item, err := h.repo.FindByID(ctx, kind, id)
	if err != nil {
		return nil, lookupErr(err, string(kind), id)
	}
	return item, nil
}

// ListItemsQuery represents the query to list items of one kind
type ListItemsQuery struct {
	Kind   domain.Kind
	Filter domain.ItemFilter
}

// ListItemsHandler handles list items query
type ListItemsHandler struct {
	repo domain.ItemRepository
}

// NewListItemsHandler creates a new list items handler
func NewListItemsHandler(repo domain.ItemRepository) *ListItemsHandler {
	return &ListItemsHandler{repo: repo}
}

// Handle executes the list items query
func (h *ListItemsHandler) Handle(ctx context.Context, q ListItemsQuery) ([]domain.Item, error) {
	items, err := h.repo.FindAll(ctx, q.Kind, q.Filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", q.Kind, err)
	}
	return items, nil
}

// SearchItemsHandler matches items by name or reference, case-insensitively.
type SearchItemsHandler struct {
	repo domain.ItemRepository
}

// NewSearchItemsHandler creates a new search handler
func NewSearchItemsHandler(repo domain.ItemRepository) *SearchItemsHandler {
	return &SearchItemsHandler{repo: repo}
}

// Handle returns at most SearchLimit items.
func (h *SearchItemsHandler) Handle(ctx context.Context, kind domain.Kind, term string) ([]domain.Item, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []domain.Item{}, nil
	}
	items, err := h.repo.Search(ctx, kind, term, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", kind, err)
	}
	return items, nil
}
