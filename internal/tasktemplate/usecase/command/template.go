package command

import (
	"context"
	"fmt"
	"strings"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
)

// CreateTemplateCommand represents the command to create a task template.
// BOM holds the requested lines per catalog kind.
type CreateTemplateCommand struct {
	BorneID     *uint
	Label       string
	Description *string
	Order       int
	Active      *bool
	BOM         map[catalog.Kind][]domain.BOMLine
}

// CreateTemplateHandler handles task template creation command
type CreateTemplateHandler struct {
	repo    domain.Repository
	catalog domain.CatalogLookup
	sync    domain.ProductionSync
}

// NewCreateTemplateHandler creates a new create template handler
func NewCreateTemplateHandler(repo domain.Repository, lookup domain.CatalogLookup, sync domain.ProductionSync) *CreateTemplateHandler {
	return &CreateTemplateHandler{repo: repo, catalog: lookup, sync: sync}
}

// Handle persists the template with its BOM, then materializes it on the
// open productions of its borne.
func (h *CreateTemplateHandler) Handle(ctx context.Context, cmd CreateTemplateCommand) (*domain.TaskTemplate, error) {
	label := strings.TrimSpace(cmd.Label)
	if label == "" {
		return nil, apperror.Invalid("label is required")
	}
	if cmd.BorneID != nil {
		if err := checkBorne(ctx, h.catalog, *cmd.BorneID); err != nil {
			return nil, err
		}
	}
	bom, err := buildBOM(ctx, h.catalog, cmd.BOM)
	if err != nil {
		return nil, err
	}

	template := &domain.TaskTemplate{
		BorneID:     cmd.BorneID,
		Label:       label,
		Description: cmd.Description,
		Order:       cmd.Order,
		Active:      cmd.Active == nil || *cmd.Active,
	}
	for _, kind := range domain.BOMKinds {
		template.Items = append(template.Items, bom[kind]...)
	}

	if err := h.repo.Create(ctx, template); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	logger.Info(ctx).
		Uint("template_id", template.ID).
		Str("label", template.Label).
		Int("bom_lines", len(template.Items)).
		Msg("Task template created")

	if template.BorneID != nil {
		if err := h.sync.SyncAllOpenProductionsForBorne(ctx, *template.BorneID); err != nil {
			return nil, fmt.Errorf("failed to sync productions of borne %d: %w", *template.BorneID, err)
		}
	}

	return reload(ctx, h.repo, template.ID)
}

// UpdateTemplateCommand represents the command to update a task template.
// Nil fields are left unchanged. Every kind present in BOM has its lines
// replaced, an empty slice clearing them.
type UpdateTemplateCommand struct {
	ID          uint
	BorneID     domain.OptionalID
	Label       *string
	Description *string
	Order       *int
	Active      *bool
	BOM         map[catalog.Kind][]domain.BOMLine
}

// UpdateTemplateHandler handles task template update command
type UpdateTemplateHandler struct {
	repo    domain.Repository
	catalog domain.CatalogLookup
	sync    domain.ProductionSync
}

// NewUpdateTemplateHandler creates a new update template handler
func NewUpdateTemplateHandler(repo domain.Repository, lookup domain.CatalogLookup, sync domain.ProductionSync) *UpdateTemplateHandler {
	return &UpdateTemplateHandler{repo: repo, catalog: lookup, sync: sync}
}

// Handle executes the update template command. A new label is copied onto
// the tasks materialized from the template; the previous and current bornes
// are both resynced.
func (h *UpdateTemplateHandler) Handle(ctx context.Context, cmd UpdateTemplateCommand) (*domain.TaskTemplate, error) {
	template, err := h.repo.FindByID(ctx, cmd.ID)
	if err != nil {
		return nil, lookupErr(err, cmd.ID)
	}
	prevBorne := template.BorneID
	prevLabel := template.Label

	if cmd.Label != nil {
		label := strings.TrimSpace(*cmd.Label)
		if label == "" {
			return nil, apperror.Invalid("label cannot be empty")
		}
		template.Label = label
	}
	if cmd.BorneID.Set {
		if cmd.BorneID.Value != nil {
			if err := checkBorne(ctx, h.catalog, *cmd.BorneID.Value); err != nil {
				return nil, err
			}
		}
		template.BorneID = cmd.BorneID.Value
	}
	if cmd.Description != nil {
		template.Description = cmd.Description
		if *cmd.Description == "" {
			template.Description = nil
		}
	}
	if cmd.Order != nil {
		template.Order = *cmd.Order
	}
	if cmd.Active != nil {
		template.Active = *cmd.Active
	}

	replace, err := buildBOM(ctx, h.catalog, cmd.BOM)
	if err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, template, replace); err != nil {
		return nil, fmt.Errorf("failed to update template %d: %w", template.ID, err)
	}
	logger.Info(ctx).Uint("template_id", template.ID).Msg("Task template updated")

	if template.Label != prevLabel {
		if err := h.sync.PropagateTemplateLabel(ctx, template.ID, template.Label); err != nil {
			return nil, fmt.Errorf("failed to propagate label of template %d: %w", template.ID, err)
		}
	}

	for _, borneID := range bornesToSync(prevBorne, template.BorneID) {
		if err := h.sync.SyncAllOpenProductionsForBorne(ctx, borneID); err != nil {
			return nil, fmt.Errorf("failed to sync productions of borne %d: %w", borneID, err)
		}
	}

	return reload(ctx, h.repo, template.ID)
}

// DeleteTemplateCommand represents the command to delete a task template
type DeleteTemplateCommand struct {
	ID uint
}

// DeleteTemplateHandler handles task template deletion command
type DeleteTemplateHandler struct {
	repo domain.Repository
}

// NewDeleteTemplateHandler creates a new delete template handler
func NewDeleteTemplateHandler(repo domain.Repository) *DeleteTemplateHandler {
	return &DeleteTemplateHandler{repo: repo}
}

// Handle removes the template and its BOM. Tasks already materialized from
// it are kept.
func (h *DeleteTemplateHandler) Handle(ctx context.Context, cmd DeleteTemplateCommand) error {
	if _, err := h.repo.FindByID(ctx, cmd.ID); err != nil {
		return lookupErr(err, cmd.ID)
	}
	if err := h.repo.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete template %d: %w", cmd.ID, err)
	}
	logger.Info(ctx).Uint("template_id", cmd.ID).Msg("Task template deleted")
	return nil
}

func lookupErr(err error, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("task template %d not found", id)
	}
	return fmt.Errorf("failed to load template %d: %w", id, err)
}

func reload(ctx context.Context, repo domain.Repository, id uint) (*domain.TaskTemplate, error) {
	template, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload template %d: %w", id, err)
	}
	return template, nil
}

func checkBorne(ctx context.Context, lookup domain.CatalogLookup, id uint) error {
	missing, err := lookup.MissingBornes(ctx, []uint{id})
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.NotFound("borne %d not found", id)
	}
	return nil
}

// buildBOM validates the requested lines of every kind and checks that the
// referenced catalog items exist.
func buildBOM(ctx context.Context, lookup domain.CatalogLookup, lines map[catalog.Kind][]domain.BOMLine) (map[catalog.Kind][]domain.TemplateItem, error) {
	out := make(map[catalog.Kind][]domain.TemplateItem, len(lines))
	for kind, requested := range lines {
		if !isBOMKind(kind) {
			return nil, apperror.Invalid("%s cannot be part of a task template", kind)
		}
		items, err := domain.BuildItems(kind, requested)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			ids := make([]uint, len(items))
			for i, it := range items {
				ids[i] = it.ItemID
			}
			missing, err := lookup.MissingItems(ctx, kind, ids)
			if err != nil {
				return nil, err
			}
			if len(missing) > 0 {
				return nil, apperror.NotFound("%s %d not found", kind, missing[0])
			}
		}
		out[kind] = items
	}
	return out, nil
}

func isBOMKind(kind catalog.Kind) bool {
	for _, k := range domain.BOMKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func bornesToSync(prev, next *uint) []uint {
	var out []uint
	if prev != nil {
		out = append(out, *prev)
	}
	if next != nil && !domain.SameID(prev, next) {
		out = append(out, *next)
	}
	return out
}
