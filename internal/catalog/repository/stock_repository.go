package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/internal/catalog/domain"
	"github.com/jerome1200/Projet-perso-service-gestion-de-production-d-un-atelier/pkg/apperror"
)

type GormStockRepository struct {
	db *gorm.DB
}

func NewGormStockRepository(db *gorm.DB) *GormStockRepository {
	return &GormStockRepository{db: db}
}

func (r *GormStockRepository) Apply(ctx context.Context, kind domain.Kind, itemID uint, op domain.Operation, quantity int, userID *uint) (*domain.Movement, error) {
	var movement *domain.Movement
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item domain.Item
		if err := tx.Where("kind = ?", kind).First(&item, itemID).Error; err != nil {
			return err
		}

		next, err := domain.ApplyMovement(item.Quantity, op, quantity)
		if err != nil {
			return err
		}

		// Guarded on the value read above so a concurrent movement cannot be lost.
		res := tx.Model(&domain.Item{}).
			Where("id = ? AND quantity = ?", item.ID, item.Quantity).
			Update("quantity", next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperror.Conflict("stock of %s %d changed concurrently, retry", kind, itemID)
		}

		log := domain.StockLog{
			Kind:      kind,
			ItemID:    item.ID,
			Quantity:  quantity,
			Operation: op,
			UserID:    userID,
		}
		if err := tx.Create(&log).Error; err != nil {
			return err
		}

		movement = &domain.Movement{
			ID:             item.ID,
			Kind:           kind,
			OldQuantity:    item.Quantity,
			NewQuantity:    next,
			AlertThreshold: item.AlertThreshold,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movement, nil
}

func (r *GormStockRepository) History(ctx context.Context, kind domain.Kind, itemID uint, limit int) ([]domain.StockLog, error) {
	var logs []domain.StockLog
	err := r.db.WithContext(ctx).
		Where("kind = ? AND item_id = ?", kind, itemID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
