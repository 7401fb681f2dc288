package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// TaskLogLimit is the number of log entries loaded per task when a
// production is returned.
const TaskLogLimit = 10

// CreateProductionCommand represents the command to create a production
type CreateProductionCommand struct {
	Name        string
	Reference   *string
	Description *string
	DueDate     *time.Time
	Lines       []domain.LineInput
}

// CreateProductionHandler handles production creation command
type CreateProductionHandler struct {
	productions domain.ProductionRepository
	tasks       domain.TaskRepository
	templates   domain.TemplateSource
	bornes      domain.BorneLookup
}

// NewCreateProductionHandler creates a new create production handler
func NewCreateProductionHandler(
	productions domain.ProductionRepository,
	tasks domain.TaskRepository,
	templates domain.TemplateSource,
	bornes domain.BorneLookup,
) *CreateProductionHandler {
	return &CreateProductionHandler{productions: productions, tasks: tasks, templates: templates, bornes: bornes}
}

// Handle persists the production and its lines, then creates one task per
// active template of the bornes it builds.
func (h *CreateProductionHandler) Handle(ctx context.Context, cmd CreateProductionCommand) (*domain.Production, error) {
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		return nil, apperror.Invalid("name is required")
	}
	lines, err := domain.BuildLines(cmd.Lines)
	if err != nil {
		return nil, err
	}

	production := &domain.Production{
		Name:        name,
		Reference:   blankToNil(cmd.Reference),
		Description: blankToNil(cmd.Description),
		DueDate:     cmd.DueDate,
		Status:      domain.StatusPlanned,
		Lines:       lines,
	}
	if err := checkBornes(ctx, h.bornes, production.BorneIDs()); err != nil {
		return nil, err
	}

	if err := h.productions.Create(ctx, production); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperror.Conflict("production reference %q already used", *production.Reference)
		}
		return nil, fmt.Errorf("failed to create production: %w", err)
	}
	metrics.ProductionsCreated.Inc()

	templates, err := h.templates.FindActiveByBornes(ctx, production.BorneIDs())
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	tasks := make([]domain.Task, 0, len(templates))
	for _, t := range templates {
		tasks = append(tasks, domain.NewTaskFromTemplate(production.ID, t))
	}
	if err := h.tasks.CreateBatch(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to create tasks of production %d: %w", production.ID, err)
	}
	metrics.TasksMaterialized.Add(float64(len(tasks)))

	logger.Info(ctx).
		Uint("production_id", production.ID).
		Int("lines", len(production.Lines)).
		Int("tasks", len(tasks)).
		Msg("Production created")

	return reload(ctx, h.productions, production.ID)
}

// UpdateProductionCommand represents the command to update a production.
// Nil fields are left unchanged; an empty reference or description clears it.
// Lines cannot be changed once the production exists.
type UpdateProductionCommand struct {
	ID           uint
	Name         *string
	Reference    *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Status       *domain.Status
}

// UpdateProductionHandler handles production update command
type UpdateProductionHandler struct {
	productions domain.ProductionRepository
}

// NewUpdateProductionHandler creates a new update production handler
func NewUpdateProductionHandler(productions domain.ProductionRepository) *UpdateProductionHandler {
	return &UpdateProductionHandler{productions: productions}
}

// Handle executes the update production command. Status changes must follow
// the production lifecycle.
func (h *UpdateProductionHandler) Handle(ctx context.Context, cmd UpdateProductionCommand) (*domain.Production, error) {
	production, err := h.productions.FindByID(ctx, cmd.ID, 0)
	if err != nil {
		return nil, lookupErr(err, "production", cmd.ID)
	}

	if cmd.Name != nil {
		name := strings.TrimSpace(*cmd.Name)
		if name == "" {
			return nil, apperror.Invalid("name cannot be empty")
		}
		production.Name = name
	}
	if cmd.Reference != nil {
		production.Reference = blankToNil(cmd.Reference)
	}
	if cmd.Description != nil {
		production.Description = blankToNil(cmd.Description)
	}
	if cmd.ClearDueDate {
		production.DueDate = nil
	} else if cmd.DueDate != nil {
		production.DueDate = cmd.DueDate
	}
	if cmd.Status != nil {
		if err := production.Status.TransitionTo(*cmd.Status); err != nil {
			return nil, err
		}
		production.Status = *cmd.Status
	}

	if err := h.productions.Update(ctx, production); err != nil {
		if database.IsUniqueViolation(err) && production.Reference != nil {
			return nil, apperror.Conflict("production reference %q already used", *production.Reference)
		}
		return nil, fmt.Errorf("failed to update production %d: %w", production.ID, err)
	}
	logger.Info(ctx).
		Uint("production_id", production.ID).
		Str("status", string(production.Status)).
		Msg("Production updated")

	return reload(ctx, h.productions, production.ID)
}

// DeleteProductionCommand represents the command to delete a production
type DeleteProductionCommand struct {
	ID uint
}

// DeleteProductionHandler handles production deletion command
type DeleteProductionHandler struct {
	productions domain.ProductionRepository
}

// NewDeleteProductionHandler creates a new delete production handler
func NewDeleteProductionHandler(productions domain.ProductionRepository) *DeleteProductionHandler {
	return &DeleteProductionHandler{productions: productions}
}

// Handle removes the production with its task logs, tasks and lines.
func (h *DeleteProductionHandler) Handle(ctx context.Context, cmd DeleteProductionCommand) error {
	if _, err := h.productions.FindByID(ctx, cmd.ID, 0); err != nil {
		return lookupErr(err, "production", cmd.ID)
	}
	if err := h.productions.Delete(ctx, cmd.ID); err != nil {
		return fmt.Errorf("failed to delete production %d: %w", cmd.ID, err)
	}
	logger.Info(ctx).Uint("production_id", cmd.ID).Msg("Production deleted")
	return nil
}

func lookupErr(err error, what string, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("%s %d not found", what, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", what, id, err)
}

func reload(ctx context.Context, productions domain.ProductionRepository, id uint) (*domain.Production, error) {
	production, err := productions.FindByID(ctx, id, TaskLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to reload production %d: %w", id, err)
	}
	return production, nil
}

func checkBornes(ctx context.Context, lookup domain.BorneLookup, ids []uint) error {
	missing, err := lookup.MissingBornes(ctx, ids)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperror.NotFound("borne %d not found", missing[0])
	}
	return nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
