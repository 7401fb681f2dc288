package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
)

// CreateBorneCommand represents the command to create a borne
type CreateBorneCommand struct {
	Name string
}

// CreateBorneHandler handles borne creation command
type CreateBorneHandler struct {
	repo domain.BorneRepository
}

// NewCreateBorneHandler creates a new create borne handler
func NewCreateBorneHandler(repo domain.BorneRepository) *CreateBorneHandler {
	return &CreateBorneHandler{repo: repo}
}

// Handle executes the create borne command
func (h *CreateBorneHandler) Handle(ctx context.Context, cmd CreateBorneCommand) (*domain.Borne, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Invalid("name is required")
	}

	borne := &domain.Borne{Name: name}
	if err := h.repo.Create(ctx, borne); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("borne name %q already used", name)
		}
		return nil, fmt.Errorf("failed to create borne: %w", err)
	}

	logger.Info(ctx).Uint("borne_id", borne.ID).Str("name", borne.Name).Msg("Borne created")
	return borne, nil
}

// DeleteBorneCommand represents the command to delete a borne
type DeleteBorneCommand struct {
	ID uint
}

// DeleteBorneHandler handles borne deletion command
type DeleteBorneHandler struct {
	repo domain.BorneRepository
}

// NewDeleteBorneHandler creates a new delete borne handler
func NewDeleteBorneHandler(repo domain.BorneRepository) *DeleteBorneHandler {
	return &DeleteBorneHandler{repo: repo}
}

// Handle deletes a borne nothing refers to any more.
func (h *DeleteBorneHandler) Handle(ctx context.Context, cmd DeleteBorneCommand) error {
	if _, err := h.repo.FindByID(ctx, cmd.ID); err != nil {
		return lookupErr(err, "borne", cmd.ID)
	}

	referenced, err := h.repo.IsReferenced(ctx, cmd.ID)
	if err != nil {
		return fmt.Errorf("failed to check borne usage: %w", err)
	}
	if referenced {
		return apperror.Conflict("borne %d is still used by items, templates or productions", cmd.ID)
	}

	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete borne: %w", err)
	}
	return nil
}
