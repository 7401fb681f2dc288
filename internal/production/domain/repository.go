package domain

import (
	"context"

	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
)

// ProductionRepository defines the contract for production data access
type ProductionRepository interface {
	// Create persists the production with its lines.
	Create(ctx context.Context, production *Production) error
	// FindByID hydrates lines, tasks with their template BOM, and the most
	// recent logs of every task.
	FindByID(ctx context.Context, id uint, logsPerTask int) (*Production, error)
	FindAll(ctx context.Context, status *Status) ([]Production, error)
	Update(ctx context.Context, production *Production) error
	// Delete removes task logs, tasks, lines and the production in one
	// transaction.
	Delete(ctx context.Context, id uint) error
	FindLines(ctx context.Context, productionID uint) ([]Line, error)
	OpenIDsForBorne(ctx context.Context, borneID uint) ([]uint, error)
	// PromoteIfPlanned moves a PLANNED production to IN_PROGRESS.
	PromoteIfPlanned(ctx context.Context, productionID uint) error
}

// TaskRepository defines the contract for production task data access
type TaskRepository interface {
	CreateBatch(ctx context.Context, tasks []Task) error
	TemplateIDs(ctx context.Context, productionID uint) ([]uint, error)
	FindByID(ctx context.Context, id uint) (*Task, error)
	FindByProduction(ctx context.Context, productionID uint) ([]Task, error)
	// SaveTransition writes the timer fields of task if its stored version is
	// still expectedVersion, bumps the version and appends log. A stale
	// version yields a conflict and nothing is written.
	SaveTransition(ctx context.Context, task *Task, expectedVersion int, log *TaskLog) error
	PropagateLabel(ctx context.Context, templateID uint, label string) (int64, error)
	// FindOpenWithHistory reads, in one transaction, every unfinished task
	// and the completed tasks with recorded time sharing a template with them.
	FindOpenWithHistory(ctx context.Context) (open []Task, history []Task, err error)
}

// TemplateSource supplies the templates to materialize.
type TemplateSource interface {
	FindActiveByBornes(ctx context.Context, borneIDs []uint) ([]tasktemplate.TaskTemplate, error)
}

// BorneLookup validates borne references.
type BorneLookup interface {
	MissingBornes(ctx context.Context, ids []uint) ([]uint, error)
}
