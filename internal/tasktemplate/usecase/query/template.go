package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/database"
)

const (
	// DefaultLogLimit is the number of log entries returned for one template.
	DefaultLogLimit = 20
	// GenericLogLimit is the number of log entries attached to each generic
	// template in the generic overview.
	GenericLogLimit = 10
)

// GetTemplateHandler handles get template query
type GetTemplateHandler struct {
	repo domain.Repository
}

// NewGetTemplateHandler creates a new get template handler
func NewGetTemplateHandler(repo domain.Repository) *GetTemplateHandler {
	return &GetTemplateHandler{repo: repo}
}

// Handle returns the template with its BOM.
func (h *GetTemplateHandler) Handle(ctx context.Context, id uint) (*domain.TaskTemplate, error) {
	template, err := h.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, id)
	}
	return template, nil
}

// ListTemplatesQuery represents the query to list templates
type ListTemplatesQuery struct {
	Filter domain.Filter
}

// ListTemplatesHandler handles list templates query
type ListTemplatesHandler struct {
	repo domain.Repository
}

// NewListTemplatesHandler creates a new list templates handler
func NewListTemplatesHandler(repo domain.Repository) *ListTemplatesHandler {
	return &ListTemplatesHandler{repo: repo}
}

// Handle executes the list templates query
func (h *ListTemplatesHandler) Handle(ctx context.Context, q ListTemplatesQuery) ([]domain.TaskTemplate, error) {
	filter := q.Filter
	switch filter.Scope {
	case "":
		filter.Scope = domain.ScopeAll
	case domain.ScopeAll, domain.ScopeGeneric:
	case domain.ScopeBorne:
		if filter.BorneID == 0 {
			return nil, apperror.Invalid("borne scope requires a borne id")
		}
	default:
		return nil, apperror.Invalid("unknown scope %q", filter.Scope)
	}

	templates, err := h.repo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// TemplateLogsQuery represents the query to read the log of a template
type TemplateLogsQuery struct {
	TemplateID uint
	Limit      int
}

// TemplateLogsHandler handles template logs query
type TemplateLogsHandler struct {
	repo domain.Repository
}

// NewTemplateLogsHandler creates a new template logs handler
func NewTemplateLogsHandler(repo domain.Repository) *TemplateLogsHandler {
	return &TemplateLogsHandler{repo: repo}
}

// Handle returns the latest entries first.
func (h *TemplateLogsHandler) Handle(ctx context.Context, q TemplateLogsQuery) ([]domain.TemplateLog, error) {
	if q.Limit < 0 {
		return nil, apperror.Invalid("limit must be positive")
	}
	if q.Limit == 0 {
		q.Limit = DefaultLogLimit
	}
	if _, err := h.repo.FindByID(ctx, q.TemplateID); err != nil {
		return nil, lookupErr(err, q.TemplateID)
	}

	logs, err := h.repo.FindLogs(ctx, q.TemplateID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs of template %d: %w", q.TemplateID, err)
	}
	return logs, nil
}

// GenericTemplatesHandler lists active generic templates with their latest
// executions.
type GenericTemplatesHandler struct {
	repo domain.Repository
}

// NewGenericTemplatesHandler creates a new generic templates handler
func NewGenericTemplatesHandler(repo domain.Repository) *GenericTemplatesHandler {
	return &GenericTemplatesHandler{repo: repo}
}

func (h *GenericTemplatesHandler) Handle(ctx context.Context) ([]domain.TaskTemplate, error) {
	templates, err := h.repo.FindGenericWithLogs(ctx, GenericLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list generic templates: %w", err)
	}
	return templates, nil
}

func lookupErr(err error, id uint) error {
	if database.IsNotFound(err) {
		return apperror.NotFound("task template %d not found", id)
	}
	return fmt.Errorf("failed to load template %d: %w", id, err)
}
