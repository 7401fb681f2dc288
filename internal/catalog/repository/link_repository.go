package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
)

type GormLinkRepository struct {
	db *gorm.DB
}

func NewGormLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

func (r *GormLinkRepository) Create(ctx context.Context, link *domain.CompositionLink) error {
	return r.db.WithContext(ctx).Omit("Child").Create(link).Error
}

func (r *GormLinkRepository) Find(ctx context.Context, kind domain.LinkKind, parentID, childID uint) (*domain.CompositionLink, error) {
	var link domain.CompositionLink
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("link_kind = ? AND parent_id = ? AND child_id = ?", kind, parentID, childID).
		First(&link).Error
	if err != nil {
		return nil, err
	}
	return &link, nil
}

func (r *GormLinkRepository) FindByParent(ctx context.Context, kind domain.LinkKind, parentID uint) ([]domain.CompositionLink, error) {
	var links []domain.CompositionLink
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("link_kind = ? AND parent_id = ?", kind, parentID).
		Order("id ASC").
		Find(&links).Error
	return links, err
}

func (r *GormLinkRepository) UpdateQuantity(ctx context.Context, kind domain.LinkKind, parentID, childID uint, quantity int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.CompositionLink{}).
		Where("link_kind = ? AND parent_id = ? AND child_id = ?", kind, parentID, childID).
		Update("quantity", quantity)
	return res.RowsAffected, res.Error
}

func (r *GormLinkRepository) Delete(ctx context.Context, kind domain.LinkKind, parentID, childID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("link_kind = ? AND parent_id = ? AND child_id = ?", kind, parentID, childID).
		Delete(&domain.CompositionLink{})
	return res.RowsAffected, res.Error
}

func (r *GormLinkRepository) DeleteByParent(ctx context.Context, kind domain.LinkKind, parentID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("link_kind = ? AND parent_id = ?", kind, parentID).
		Delete(&domain.CompositionLink{})
	return res.RowsAffected, res.Error
}
