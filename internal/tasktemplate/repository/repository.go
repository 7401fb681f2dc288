package repository

import (
	"context"

	"gorm.io/gorm"

	catalog "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
)

var templateUpdateColumns = []string{"borne_id", "label", "description", "sort_order", "active"}

type GormTemplateRepository struct {
	db *gorm.DB
}

func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("kind ASC, id ASC")
	}).Preload("Items.Item")
}

func (r *GormTemplateRepository) Create(ctx context.Context, template *domain.TaskTemplate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		items := template.Items
		template.Items = nil
		if err := tx.Omit("Items", "Logs").Create(template).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].TemplateID = template.ID
		}
		if len(items) > 0 {
			if err := tx.Omit("Item").Create(&items).Error; err != nil {
				return err
			}
		}
		template.Items = items
		return nil
	})
}

func (r *GormTemplateRepository) FindByID(ctx context.Context, id uint) (*domain.TaskTemplate, error) {
	var template domain.TaskTemplate
	if err := preloadItems(r.db.WithContext(ctx)).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (r *GormTemplateRepository) FindAll(ctx context.Context, filter domain.Filter) ([]domain.TaskTemplate, error) {
	q := preloadItems(r.db.WithContext(ctx))
	switch filter.Scope {
	case domain.ScopeGeneric:
		q = q.Where("borne_id IS NULL")
	case domain.ScopeBorne:
		q = q.Where("borne_id = ?", filter.BorneID)
	}

	var templates []domain.TaskTemplate
	err := q.Order("sort_order ASC, id ASC").Find(&templates).Error
	return templates, err
}

func (r *GormTemplateRepository) FindActiveByBornes(ctx context.Context, borneIDs []uint) ([]domain.TaskTemplate, error) {
	var templates []domain.TaskTemplate
	if len(borneIDs) == 0 {
		return templates, nil
	}
	err := r.db.WithContext(ctx).
		Where("active = ? AND borne_id IN ?", true, borneIDs).
		Order("borne_id ASC, sort_order ASC, id ASC").
		Find(&templates).Error
	return templates, err
}

func (r *GormTemplateRepository) Update(ctx context.Context, template *domain.TaskTemplate, replace map[catalog.Kind][]domain.TemplateItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(template).Select(templateUpdateColumns).Omit("Items", "Logs").Updates(template).Error; err != nil {
			return err
		}
		for _, kind := range domain.BOMKinds {
			items, ok := replace[kind]
			if !ok {
				continue
			}
			if err := tx.Where("template_id = ? AND kind = ?", template.ID, kind).
				Delete(&domain.TemplateItem{}).Error; err != nil {
				return err
			}
			for i := range items {
				items[i].TemplateID = template.ID
			}
			if len(items) > 0 {
				if err := tx.Omit("Item").Create(&items).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// Delete removes the template and its BOM rows. Execution logs are kept.
func (r *GormTemplateRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&domain.TemplateItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.TaskTemplate{}, id).Error
	})
}

func (r *GormTemplateRepository) CreateLog(ctx context.Context, log *domain.TemplateLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *GormTemplateRepository) FindLogs(ctx context.Context, templateID uint, limit int) ([]domain.TemplateLog, error) {
	var logs []domain.TemplateLog
	err := r.db.WithContext(ctx).
		Where("template_id = ?", templateID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *GormTemplateRepository) FindGenericWithLogs(ctx context.Context, logLimit int) ([]domain.TaskTemplate, error) {
	var templates []domain.TaskTemplate
	err := r.db.WithContext(ctx).
		Preload("Logs", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at DESC, id DESC")
		}).
		Where("active = ? AND borne_id IS NULL", true).
		Order("label ASC, id ASC").
		Find(&templates).Error
	if err != nil {
		return nil, err
	}
	// Preload limits apply to the whole query, so trim per template here.
	for i := range templates {
		if len(templates[i].Logs) > logLimit {
			templates[i].Logs = templates[i].Logs[:logLimit]
		}
	}
	return templates, nil
}
