package command

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/metrics"
)

// Syncer keeps production tasks in line with task templates. It is the
// production side of template changes.
type Syncer struct {
	productions domain.ProductionRepository
	tasks       domain.TaskRepository
	templates   domain.TemplateSource
}

// NewSyncer creates a new production syncer
func NewSyncer(productions domain.ProductionRepository, tasks domain.TaskRepository, templates domain.TemplateSource) *Syncer {
	return &Syncer{productions: productions, tasks: tasks, templates: templates}
}

// SyncTasksFromTemplates creates a task for every active template of the
// production's bornes that has none yet. It never removes or duplicates
// tasks and returns the number created.
func (s *Syncer) SyncTasksFromTemplates(ctx context.Context, productionID uint) (int, error) {
	lines, err := s.productions.FindLines(ctx, productionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load lines of production %d: %w", productionID, err)
	}
	production := domain.Production{ID: productionID, Lines: lines}

	templates, err := s.templates.FindActiveByBornes(ctx, production.BorneIDs())
	if err != nil {
		return 0, fmt.Errorf("failed to load templates: %w", err)
	}
	existing, err := s.tasks.TemplateIDs(ctx, productionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load tasks of production %d: %w", productionID, err)
	}
	present := make(map[uint]bool, len(existing))
	for _, id := range existing {
		present[id] = true
	}

	var tasks []domain.Task
	for _, t := range templates {
		if !present[t.ID] {
			tasks = append(tasks, domain.NewTaskFromTemplate(productionID, t))
		}
	}
	if len(tasks) == 0 {
		return 0, nil
	}
	if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
		return 0, fmt.Errorf("failed to create tasks of production %d: %w", productionID, err)
	}
	metrics.TasksMaterialized.Add(float64(len(tasks)))

	logger.Info(ctx).
		Uint("production_id", productionID).
		Int("tasks", len(tasks)).
		Msg("Production tasks synced from templates")
	return len(tasks), nil
}

// SyncAllOpenProductionsForBorne syncs every planned or in-progress
// production building borneID.
func (s *Syncer) SyncAllOpenProductionsForBorne(ctx context.Context, borneID uint) error {
	ids, err := s.productions.OpenIDsForBorne(ctx, borneID)
	if err != nil {
		return fmt.Errorf("failed to find open productions of borne %d: %w", borneID, err)
	}
	for _, id := range ids {
		if _, err := s.SyncTasksFromTemplates(ctx, id); err != nil {
			return err
		}
	}
	logger.Debug(ctx).Uint("borne_id", borneID).Int("productions", len(ids)).Msg("Open productions synced")
	return nil
}

// PropagateTemplateLabel copies a renamed template label onto its tasks.
func (s *Syncer) PropagateTemplateLabel(ctx context.Context, templateID uint, label string) error {
	n, err := s.tasks.PropagateLabel(ctx, templateID, label)
	if err != nil {
		return fmt.Errorf("failed to relabel tasks of template %d: %w", templateID, err)
	}
	logger.Info(ctx).Uint("template_id", templateID).Int64("tasks", n).Msg("Template label propagated")
	return nil
}

// SyncProductionCommand asks for a manual resync of one production
type SyncProductionCommand struct {
	ID uint
}

// SyncProductionHandler handles manual production resync
type SyncProductionHandler struct {
	productions domain.ProductionRepository
	syncer      *Syncer
}

// NewSyncProductionHandler creates a new sync production handler
func NewSyncProductionHandler(productions domain.ProductionRepository, syncer *Syncer) *SyncProductionHandler {
	return &SyncProductionHandler{productions: productions, syncer: syncer}
}

// Handle resyncs an open production and returns it hydrated.
func (h *SyncProductionHandler) Handle(ctx context.Context, cmd SyncProductionCommand) (*domain.Production, error) {
	production, err := h.productions.FindByID(ctx, cmd.ID, 0)
	if err != nil {
		return nil, lookupErr(err, "production", cmd.ID)
	}
	if !production.Status.Open() {
		return nil, apperror.Invalid("production %d is %s and no longer receives tasks", production.ID, production.Status)
	}
	if _, err := h.syncer.SyncTasksFromTemplates(ctx, production.ID); err != nil {
		return nil, err
	}
	return reload(ctx, h.productions, production.ID)
}
