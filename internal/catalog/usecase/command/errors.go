package command

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

// lookupErr turns a missing-row error into NotFound and wraps anything else.
func lookupErr(err error, what string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

// resolveBornes loads every borne of ids, failing on the first missing one.
func resolveBornes(ctx context.Context, repo domain.BorneRepository, ids []uint) ([]domain.Borne, error) {
	ids = uniqueIDs(ids)
	bornes, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load bornes: %w", err)
	}
	if len(bornes) == len(ids) {
		return bornes, nil
	}
	found := make(map[uint]bool, len(bornes))
	for _, b := range bornes {
		found[b.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return nil, apperror.NotFound("borne %d not found", id)
		}
	}
	return bornes, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
