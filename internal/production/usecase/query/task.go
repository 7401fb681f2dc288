package query

import (
	"context"
	"fmt"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
)

// ListTasksHandler handles the query listing the tasks of a production
type ListTasksHandler struct {
	productions domain.ProductionRepository
	tasks       domain.TaskRepository
}

// NewListTasksHandler creates a new list tasks handler
func NewListTasksHandler(productions domain.ProductionRepository, tasks domain.TaskRepository) *ListTasksHandler {
	return &ListTasksHandler{productions: productions, tasks: tasks}
}

func (h *ListTasksHandler) Handle(ctx context.Context, productionID uint) ([]domain.Task, error) {
	if _, err := h.productions.FindByID(ctx, productionID, 0); err != nil {
		return nil, lookupErr(err, "production", productionID)
	}
	tasks, err := h.tasks.FindByProduction(ctx, productionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks of production %d: %w", productionID, err)
	}
	return tasks, nil
}

// GetTaskHandler handles get task query
type GetTaskHandler struct {
	tasks domain.TaskRepository
}

// NewGetTaskHandler creates a new get task handler
func NewGetTaskHandler(tasks domain.TaskRepository) *GetTaskHandler {
	return &GetTaskHandler{tasks: tasks}
}

func (h *GetTaskHandler) Handle(ctx context.Context, id uint) (*domain.Task, error) {
	task, err := h.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "task", id)
	}
	return task, nil
}

// OpenTasksHandler lists every unfinished task with its time estimate
type OpenTasksHandler struct {
	tasks domain.TaskRepository
}

// NewOpenTasksHandler creates a new open tasks handler
func NewOpenTasksHandler(tasks domain.TaskRepository) *OpenTasksHandler {
	return &OpenTasksHandler{tasks: tasks}
}

// Handle reads open and historical tasks from one snapshot and annotates the
// open ones with the average seconds per machine of their template.
func (h *OpenTasksHandler) Handle(ctx context.Context) ([]domain.OpenTask, error) {
	open, history, err := h.tasks.FindOpenWithHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load open tasks: %w", err)
	}
	return domain.Estimate(open, history), nil
}
