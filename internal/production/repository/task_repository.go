package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

type GormTaskRepository struct {
	db *gorm.DB
}

func NewGormTaskRepository(db *gorm.DB) *GormTaskRepository {
	return &GormTaskRepository{db: db}
}

func (r *GormTaskRepository) CreateBatch(ctx context.Context, tasks []domain.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Template", "Production", "Logs").Create(&tasks).Error
}

func (r *GormTaskRepository) TemplateIDs(ctx context.Context, productionID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("production_id = ? AND task_template_id IS NOT NULL", productionID).
		Distinct().
		Pluck("task_template_id", &ids).Error
	return ids, err
}

func (r *GormTaskRepository) FindByID(ctx context.Context, id uint) (*domain.Task, error) {
	var task domain.Task
	err := r.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *GormTaskRepository) FindByProduction(ctx context.Context, productionID uint) ([]domain.Task, error) {
	var tasks []domain.Task
	err := r.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		Where("production_id = ?", productionID).
		Order("id ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *GormTaskRepository) SaveTransition(ctx context.Context, task *domain.Task, expectedVersion int, log *domain.TaskLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Task{}).
			Where("id = ? AND version = ?", task.ID, expectedVersion).
			Updates(map[string]interface{}{
				"is_done":         task.IsDone,
				"running":         task.Running,
				"last_started_at": task.LastStartedAt,
				"total_seconds":   task.TotalSeconds,
				"assigned_to_id":  task.AssignedToID,
				"version":         expectedVersion + 1,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("task %d was modified concurrently, reload and retry", task.ID)
		}
		task.Version = expectedVersion + 1

		log.TaskID = task.ID
		return tx.Create(log).Error
	})
}

func (r *GormTaskRepository) PropagateLabel(ctx context.Context, templateID uint, label string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Task{}).
		Where("task_template_id = ?", templateID).
		Update("label", label)
	return res.RowsAffected, res.Error
}

func (r *GormTaskRepository) FindOpenWithHistory(ctx context.Context) ([]domain.Task, []domain.Task, error) {
	var open, history []domain.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Preload("Production").
			Preload("Production.Lines").
			Preload("Template").
			Where("is_done = ?", false).
			Order("production_id ASC, id ASC").
			Find(&open).Error
		if err != nil {
			return err
		}

		templateIDs := make([]uint, 0)
		seen := make(map[uint]bool)
		for _, t := range open {
			if t.TaskTemplateID != nil && !seen[*t.TaskTemplateID] {
				seen[*t.TaskTemplateID] = true
				templateIDs = append(templateIDs, *t.TaskTemplateID)
			}
		}
		if len(templateIDs) == 0 {
			return nil
		}

		return tx.
			Preload("Production").
			Preload("Production.Lines").
			Preload("Template").
			Where("is_done = ? AND total_seconds > ? AND task_template_id IN ?", true, 0, templateIDs).
			Find(&history).Error
	})
	if err != nil {
		return nil, nil, err
	}
	return open, history, nil
}
