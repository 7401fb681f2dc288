package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/logger"
)

// LogExecutionCommand records that a generic template was carried out.
type LogExecutionCommand struct {
	TemplateID uint
	UserID     *uint
	Note       string
}

// LogExecutionHandler handles execution logging of generic templates
type LogExecutionHandler struct {
	repo domain.Repository
}

// NewLogExecutionHandler creates a new log execution handler
func NewLogExecutionHandler(repo domain.Repository) *LogExecutionHandler {
	return &LogExecutionHandler{repo: repo}
}

// Handle appends a COMPLETED entry to the template log.
func (h *LogExecutionHandler) Handle(ctx context.Context, cmd LogExecutionCommand) (*domain.TemplateLog, error) {
	template, err := h.repo.FindByID(ctx, cmd.TemplateID)
	if err != nil {
		return nil, lookupErr(err, cmd.TemplateID)
	}
	if template.BorneID != nil {
		return nil, apperror.Invalid("task template %d is bound to a borne; executions are tracked on production tasks", template.ID)
	}

	entry := &domain.TemplateLog{
		TemplateID: template.ID,
		EventType:  domain.EventCompleted,
		UserID:     cmd.UserID,
	}
	if note := strings.TrimSpace(cmd.Note); note != "" {
		entry.Note = &note
	}
	if err := h.repo.CreateLog(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to log execution of template %d: %w", template.ID, err)
	}

	logger.Info(ctx).Uint("template_id", template.ID).Msg("Generic task executed")
	return entry, nil
}
