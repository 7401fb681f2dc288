package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	tasktemplate "github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/tasktemplate/domain"
)

var itemUpdateColumns = []string{
	"name", "reference", "type", "state", "version", "numero",
	"alert_threshold", "location", "photo_url", "archived",
}

type GormItemRepository struct {
	db *gorm.DB
}

func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

func (r *GormItemRepository) Create(ctx context.Context, item *domain.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *GormItemRepository) FindByID(ctx context.Context, kind domain.Kind, id uint) (*domain.Item, error) {
	var item domain.Item
	err := r.db.WithContext(ctx).
		Preload("Bornes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("kind = ?", kind).
		First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *GormItemRepository) FindAll(ctx context.Context, kind domain.Kind, filter domain.ItemFilter) ([]domain.Item, error) {
	q := r.db.WithContext(ctx).
		Preload("Bornes", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Where("kind = ?", kind)
	if filter.Archived != nil {
		q = q.Where("archived = ?", *filter.Archived)
	}
	if filter.BorneID != nil {
		q = q.Where("id IN (?)", r.db.Table("catalog_item_bornes").Select("item_id").Where("borne_id = ?", *filter.BorneID))
	}

	var items []domain.Item
	err := q.Order("name ASC").Find(&items).Error
	return items, err
}

func (r *GormItemRepository) FindByIDs(ctx context.Context, kind domain.Kind, ids []uint) ([]domain.Item, error) {
	var items []domain.Item
	if len(ids) == 0 {
		return items, nil
	}
	err := r.db.WithContext(ctx).Where("kind = ? AND id IN ?", kind, ids).Find(&items).Error
	return items, err
}

func (r *GormItemRepository) Search(ctx context.Context, kind domain.Kind, term string, limit int) ([]domain.Item, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	var items []domain.Item
	err := r.db.WithContext(ctx).
		Where("kind = ?", kind).
		Where("LOWER(name) LIKE ? OR LOWER(reference) LIKE ?", pattern, pattern).
		Order("name ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *GormItemRepository) References(ctx context.Context, kind domain.Kind, pieceType string) ([]string, error) {
	q := r.db.WithContext(ctx).Model(&domain.Item{}).Where("kind = ?", kind)
	if kind == domain.KindPiece {
		q = q.Where("UPPER(type) = ?", strings.ToUpper(pieceType))
	}
	var refs []string
	err := q.Pluck("reference", &refs).Error
	return refs, err
}

func (r *GormItemRepository) Taken(ctx context.Context, kind domain.Kind, name, reference string, excludeID uint) (bool, bool, error) {
	count := func(column, value string) (int64, error) {
		var n int64
		q := r.db.WithContext(ctx).Model(&domain.Item{}).Where("kind = ? AND "+column+" = ?", kind, value)
		if excludeID != 0 {
			q = q.Where("id <> ?", excludeID)
		}
		err := q.Count(&n).Error
		return n, err
	}

	names, err := count("name", name)
	if err != nil {
		return false, false, err
	}
	refs, err := count("reference", reference)
	if err != nil {
		return false, false, err
	}
	return names > 0, refs > 0, nil
}

func (r *GormItemRepository) Update(ctx context.Context, item *domain.Item, bornes []domain.Borne) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(item).Select(itemUpdateColumns).Updates(item).Error; err != nil {
			return err
		}
		if bornes == nil {
			return nil
		}
		if err := tx.Model(item).Association("Bornes").Replace(bornes); err != nil {
			return err
		}
		item.Bornes = bornes
		return nil
	})
}

func (r *GormItemRepository) SetArchived(ctx context.Context, kind domain.Kind, id uint, archived bool) error {
	return r.db.WithContext(ctx).
		Model(&domain.Item{}).
		Where("id = ? AND kind = ?", id, kind).
		Update("archived", archived).Error
}

func (r *GormItemRepository) Delete(ctx context.Context, kind domain.Kind, id uint) error {
	asParent, asChild := domain.LinkKindsTouching(kind)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(asParent) > 0 {
			if err := tx.Where("link_kind IN ? AND parent_id = ?", asParent, id).
				Delete(&domain.CompositionLink{}).Error; err != nil {
				return err
			}
		}
		if len(asChild) > 0 {
			if err := tx.Where("link_kind IN ? AND child_id = ?", asChild, id).
				Delete(&domain.CompositionLink{}).Error; err != nil {
				return err
			}
		}
		// Template BOM rows point at catalog items by (kind, item_id).
		if err := tx.Where("kind = ? AND item_id = ?", kind, id).
			Delete(&tasktemplate.TemplateItem{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM catalog_item_bornes WHERE item_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Where("kind = ?", kind).Delete(&domain.Item{}, id).Error
	})
}
