package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

// Tables outside the catalog that hold a borne id.
var borneReferencingTables = []string{"catalog_item_bornes", "task_templates", "production_lines"}

type GormBorneRepository struct {
	db *gorm.DB
}

func NewGormBorneRepository(db *gorm.DB) *GormBorneRepository {
	return &GormBorneRepository{db: db}
}

func (r *GormBorneRepository) Create(ctx context.Context, borne *domain.Borne) error {
	return r.db.WithContext(ctx).Create(borne).Error
}

func (r *GormBorneRepository) FindByID(ctx context.Context, id uint) (*domain.Borne, error) {
	var borne domain.Borne
	if err := r.db.WithContext(ctx).First(&borne, id).Error; err != nil {
		return nil, err
	}
	return &borne, nil
}

func (r *GormBorneRepository) FindAll(ctx context.Context) ([]domain.Borne, error) {
	var bornes []domain.Borne
	err := r.db.WithContext(ctx).Order("name ASC").Find(&bornes).Error
	return bornes, err
}

func (r *GormBorneRepository) FindByIDs(ctx context.Context, ids []uint) ([]domain.Borne, error) {
	var bornes []domain.Borne
	if len(ids) == 0 {
		return bornes, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id ASC").Find(&bornes).Error
	return bornes, err
}

func (r *GormBorneRepository) IsReferenced(ctx context.Context, id uint) (bool, error) {
	for _, table := range borneReferencingTables {
		var count int64
		if err := r.db.WithContext(ctx).Table(table).Where("borne_id = ?", id).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *GormBorneRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&domain.Borne{}, id).Error
}
