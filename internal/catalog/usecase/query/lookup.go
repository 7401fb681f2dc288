package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

// Lookup answers existence checks for other modules.
type Lookup struct {
	bornes domain.BorneRepository
	items  domain.ItemRepository
}

// NewLookup creates a catalog lookup
func NewLookup(bornes domain.BorneRepository, items domain.ItemRepository) *Lookup {
	return &Lookup{bornes: bornes, items: items}
}

// MissingBornes returns the ids among ids that match no borne.
func (l *Lookup) MissingBornes(ctx context.Context, ids []uint) ([]uint, error) {
	bornes, err := l.bornes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bornes: %w", err)
	}
	found := make(map[uint]bool, len(bornes))
	for _, b := range bornes {
		found[b.ID] = true
	}
	return missing(ids, found), nil
}

// MissingItems returns the ids among ids that match no item of kind.
func (l *Lookup) MissingItems(ctx context.Context, kind domain.Kind, ids []uint) ([]uint, error) {
	items, err := l.items.FindByIDs(ctx, kind, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	found := make(map[uint]bool, len(items))
	for _, it := range items {
		found[it.ID] = true
	}
	return missing(ids, found), nil
}

func missing(ids []uint, found map[uint]bool) []uint {
	var out []uint
	for _, id := range ids {
		if !found[id] {
			out = append(out, id)
			found[id] = true
		}
	}
	return out
}
