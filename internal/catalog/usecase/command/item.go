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

// CreateItemCommand represents the command to create a catalog item. An
// empty Reference is generated from the kind and type.
type CreateItemCommand struct {
	Kind           domain.Kind
	Name           string
	Reference      string
	Type           string
	State          string
	Version        string
	Numero         string
	AlertThreshold int
	Location       string
	PhotoURL       *string
	BorneIDs       []uint
}

// CreateItemHandler handles catalog item creation command
type CreateItemHandler struct {
	items  domain.ItemRepository
	bornes domain.BorneRepository
}

// NewCreateItemHandler creates a new create item handler
func NewCreateItemHandler(items domain.ItemRepository, bornes domain.BorneRepository) *CreateItemHandler {
	return &CreateItemHandler{items: items, bornes: bornes}
}

// Handle executes the create item command
func (h *CreateItemHandler) Handle(ctx context.Context, cmd CreateItemCommand) (*domain.Item, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Invalid("name is required")
	}
	if len(cmd.BorneIDs) == 0 {
		return nil, apperror.Invalid("at least one borne must be selected")
	}
	if cmd.AlertThreshold < 0 {
		return nil, apperror.Invalid("alert threshold cannot be negative")
	}

	bornes, err := resolveBornes(ctx, h.bornes, cmd.BorneIDs)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		Kind:           cmd.Kind,
		Name:           name,
		Reference:      strings.TrimSpace(cmd.Reference),
		Type:           cmd.Type,
		State:          cmd.State,
		Version:        cmd.Version,
		Numero:         cmd.Numero,
		AlertThreshold: cmd.AlertThreshold,
		Location:       cmd.Location,
		PhotoURL:       cmd.PhotoURL,
		Bornes:         bornes,
	}

	if item.Reference == "" {
		if err := h.generateReference(ctx, item); err != nil {
			return nil, err
		}
	}

	if err := checkUnique(ctx, h.items, item, 0); err != nil {
		return nil, err
	}

	if err := h.items.Create(ctx, item); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("name or reference already used")
		}
		return nil, fmt.Errorf("failed to create %s: %w", cmd.Kind, err)
	}

	logger.Info(ctx).
		Str("kind", string(item.Kind)).
		Uint("item_id", item.ID).
		Str("reference", item.Reference).
		Msg("Catalog item created")
	return item, nil
}

func (h *CreateItemHandler) generateReference(ctx context.Context, item *domain.Item) error {
	scheme, ok := domain.SchemeFor(item.Kind, item.Type)
	if !ok {
		return apperror.Invalid("reference is required for a %s of type %q", item.Kind, item.Type)
	}
	existing, err := h.items.References(ctx, item.Kind, item.Type)
	if err != nil {
		return fmt.Errorf("failed to load references: %w", err)
	}

	if scheme.IncludeVersion && item.Version == "" {
		item.Version = "A"
	}
	numero, reference := scheme.Next(existing, item.Version)
	item.Reference = reference
	if item.Numero == "" {
		item.Numero = numero
	}
	return nil
}

func checkUnique(ctx context.Context, repo domain.ItemRepository, item *domain.Item, excludeID uint) error {
	nameTaken, refTaken, err := repo.Taken(ctx, item.Kind, item.Name, item.Reference, excludeID)
	if err != nil {
		return fmt.Errorf("failed to check uniqueness: %w", err)
	}
	if refTaken {
		return apperror.Conflict("reference %q already used", item.Reference)
	}
	if nameTaken {
		return apperror.Conflict("name %q already used", item.Name)
	}
	return nil
}

// UpdateItemCommand carries the fields to change. Nil fields are left as is;
// a non-nil BorneIDs replaces the whole borne set.
type UpdateItemCommand struct {
	Kind           domain.Kind
	ID             uint
	Name           *string
	Reference      *string
	Type           *string
	State          *string
	Version        *string
	Numero         *string
	AlertThreshold *int
	Location       *string
	PhotoURL       *string
	BorneIDs       *[]uint
}

// UpdateItemHandler handles catalog item update command
type UpdateItemHandler struct {
	items  domain.ItemRepository
	bornes domain.BorneRepository
}

// NewUpdateItemHandler creates a new update item handler
func NewUpdateItemHandler(items domain.ItemRepository, bornes domain.BorneRepository) *UpdateItemHandler {
	return &UpdateItemHandler{items: items, bornes: bornes}
}

// Handle executes the update item command
func (h *UpdateItemHandler) Handle(ctx context.Context, cmd UpdateItemCommand) (*domain.Item, error) {
	item, err := h.items.FindByID(ctx, cmd.Kind, cmd.ID)
	if err != nil {
		return nil, lookupErr(err, string(cmd.Kind), cmd.ID)
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperror.Invalid("name cannot be empty")
		}
		item.Name = name
	}
	if cmd.Reference != nil {
		ref := strings.TrimSpace(*cmd.Reference)
		if ref == "" {
			return nil, apperror.Invalid("reference cannot be empty")
		}
		item.Reference = ref
	}
	if cmd.AlertThreshold != nil {
		if *cmd.AlertThreshold < 0 {
			return nil, apperror.Invalid("alert threshold cannot be negative")
		}
		item.AlertThreshold = *cmd.AlertThreshold
	}
	assign(&item.Type, cmd.Type)
	assign(&item.State, cmd.State)
	assign(&item.Version, cmd.Version)
	assign(&item.Numero, cmd.Numero)
	assign(&item.Location, cmd.Location)
	if cmd.PhotoURL != nil {
		item.PhotoURL = cmd.PhotoURL
		if *cmd.PhotoURL == "" {
			item.PhotoURL = nil
		}
	}

	var bornes []domain.Borne
	if cmd.BorneIDs != nil {
		if len(*cmd.BorneIDs) == 0 {
			return nil, apperror.Invalid("at least one borne must be selected")
		}
		if bornes, err = resolveBornes(ctx, h.bornes, *cmd.BorneIDs); err != nil {
			return nil, err
		}
	}

	if err := checkUnique(ctx, h.items, item, item.ID); err != nil {
		return nil, err
	}

	if err := h.items.Update(ctx, item, bornes); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("name or reference already used")
		}
		return nil, fmt.Errorf("failed to update %s %d: %w", cmd.Kind, cmd.ID, err)
	}
	return item, nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// SetArchivedCommand archives or restores an item. Stock is untouched.
type SetArchivedCommand struct {
	Kind     domain.Kind
	ID       uint
	Archived bool
}

// SetArchivedHandler handles archive and unarchive commands
type SetArchivedHandler struct {
	items domain.ItemRepository
}

// NewSetArchivedHandler creates a new archive handler
func NewSetArchivedHandler(items domain.ItemRepository) *SetArchivedHandler {
	return &SetArchivedHandler{items: items}
}

// Handle executes the archive command
func (h *SetArchivedHandler) Handle(ctx context.Context, cmd SetArchivedCommand) (*domain.Item, error) {
	item, err := h.items.FindByID(ctx, cmd.Kind, cmd.ID)
	if err != nil {
		return nil, lookupErr(err, string(cmd.Kind), cmd.ID)
	}
	if err := h.items.SetArchived(ctx, cmd.Kind, cmd.ID, cmd.Archived); err != nil {
		return nil, fmt.Errorf("failed to archive %s %d: %w", cmd.Kind, cmd.ID, err)
	}
	item.Archived = cmd.Archived
	return item, nil
}

// DeleteItemCommand represents the command to delete a catalog item
type DeleteItemCommand struct {
	Kind domain.Kind
	ID   uint
}

// DeleteItemHandler handles catalog item deletion command
type DeleteItemHandler struct {
	items domain.ItemRepository
}

// NewDeleteItemHandler creates a new delete item handler
func NewDeleteItemHandler(items domain.ItemRepository) *DeleteItemHandler {
	return &DeleteItemHandler{items: items}
}

// Handle removes the item and every composition link touching it.
func (h *DeleteItemHandler) Handle(ctx context.Context, cmd DeleteItemCommand) error {
	if _, err := h.items.FindByID(ctx, cmd.Kind, cmd.ID); err != nil {
		return lookupErr(err, string(cmd.Kind), cmd.ID)
	}
	if err := h.items.Delete(ctx, cmd.Kind, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete %s %d: %w", cmd.Kind, cmd.ID, err)
	}
	logger.Info(ctx).Str("kind", string(cmd.Kind)).Uint("item_id", cmd.ID).Msg("Catalog item deleted")
	return nil
}
