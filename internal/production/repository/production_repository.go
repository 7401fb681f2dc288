package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/production/domain"
)

var productionUpdateColumns = []string{"name", "reference", "description", "due_date", "status"}

type GormProductionRepository struct {
	db *gorm.DB
}

func NewGormProductionRepository(db *gorm.DB) *GormProductionRepository {
	return &GormProductionRepository{db: db}
}

func (r *GormProductionRepository) Create(ctx context.Context, production *domain.Production) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines := production.Lines
		production.Lines = nil
		if err := tx.Omit("Lines", "Tasks").Create(production).Error; err != nil {
			return err
		}
		for i := range lines {
			lines[i].ProductionID = production.ID
		}
		if err := tx.Omit("Borne").Create(&lines).Error; err != nil {
			return err
		}
		production.Lines = lines
		return nil
	})
}

func (r *GormProductionRepository) FindByID(ctx context.Context, id uint, logsPerTask int) (*domain.Production, error) {
	var production domain.Production
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Borne").
		Preload("Tasks", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Tasks.Template").
		Preload("Tasks.Template.Items", func(db *gorm.DB) *gorm.DB { return db.Order("kind ASC, id ASC") }).
		Preload("Tasks.Template.Items.Item").
		Preload("Tasks.Logs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at DESC, id DESC") }).
		First(&production, id).Error
	if err != nil {
		return nil, err
	}
	for i := range production.Tasks {
		if len(production.Tasks[i].Logs) > logsPerTask {
			production.Tasks[i].Logs = production.Tasks[i].Logs[:logsPerTask]
		}
	}
	return &production, nil
}

func (r *GormProductionRepository) FindAll(ctx context.Context, status *domain.Status) ([]domain.Production, error) {
	q := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Lines.Borne")
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	var productions []domain.Production
	err := q.Order("created_at DESC, id DESC").Find(&productions).Error
	return productions, err
}

func (r *GormProductionRepository) Update(ctx context.Context, production *domain.Production) error {
	return r.db.WithContext(ctx).
		Model(production).
		Select(productionUpdateColumns).
		Updates(production).Error
}

func (r *GormProductionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taskIDs := tx.Model(&domain.Task{}).Select("id").Where("production_id = ?", id)
		if err := tx.Where("task_id IN (?)", taskIDs).Delete(&domain.TaskLog{}).Error; err != nil {
			return err
		}
		if err := tx.Where("production_id = ?", id).Delete(&domain.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("production_id = ?", id).Delete(&domain.Line{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Production{}, id).Error
	})
}

func (r *GormProductionRepository) FindLines(ctx context.Context, productionID uint) ([]domain.Line, error) {
	var lines []domain.Line
	err := r.db.WithContext(ctx).
		Where("production_id = ?", productionID).
		Order("id ASC").
		Find(&lines).Error
	return lines, err
}

func (r *GormProductionRepository) OpenIDsForBorne(ctx context.Context, borneID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&domain.Production{}).
		Where("status IN ?", []domain.Status{domain.StatusPlanned, domain.StatusInProgress}).
		Where("id IN (?)", r.db.Model(&domain.Line{}).Select("production_id").Where("borne_id = ?", borneID)).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormProductionRepository) PromoteIfPlanned(ctx context.Context, productionID uint) error {
	return r.db.WithContext(ctx).
		Model(&domain.Production{}).
		Where("id = ? AND status = ?", productionID, domain.StatusPlanned).
		Update("status", domain.StatusInProgress).Error
}
