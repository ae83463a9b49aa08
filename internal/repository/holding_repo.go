package repository

import (
	"context"
	"errors"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HoldingRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Holding, error)
	GetByHolder(ctx context.Context, holderID uuid.UUID) (*models.Holding, error)
	Create(ctx context.Context, h *models.Holding) error
	// MergeItem: одна позиция на (holding_id, item_id); при конфликте количества складываются.
	MergeItem(ctx context.Context, holdingID, itemID uuid.UUID, name string, qty int32) error
	// DecrementItem уменьшает количество (требуем quantity >= qty) и удаляет обнулённую строку.
	DecrementItem(ctx context.Context, holdingID, itemID uuid.UUID, qty int32) (bool, error)
	CountItems(ctx context.Context, holdingID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type holdingRepo struct{ db *gorm.DB }

func NewHoldingRepo(db *gorm.DB) HoldingRepo { return &holdingRepo{db: db} }

func (r *holdingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	err := r.db.WithContext(ctx).Preload("Items").First(&h, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &h, err
}

func (r *holdingRepo) GetByHolder(ctx context.Context, holderID uuid.UUID) (*models.Holding, error) {
	var h models.Holding
	err := r.db.WithContext(ctx).Preload("Items").First(&h, "holder_id = ?", holderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &h, err
}

func (r *holdingRepo) Create(ctx context.Context, h *models.Holding) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *holdingRepo) MergeItem(ctx context.Context, holdingID, itemID uuid.UUID, name string, qty int32) error {
	rec := models.HoldingItem{
		HoldingID: holdingID,
		ItemID:    itemID,
		Name:      name,
		Quantity:  qty,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "holding_id"}, {Name: "item_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"quantity": gorm.Expr("holding_items.quantity + EXCLUDED.quantity"),
			}),
		}).
		Create(&rec).Error
}

func (r *holdingRepo) DecrementItem(ctx context.Context, holdingID, itemID uuid.UUID, qty int32) (bool, error) {
	// CHECK quantity > 0 не даёт пройти через ноль: строка либо уменьшается,
	// либо удаляется целиком, если возвращают всё её количество.
	tx := r.db.WithContext(ctx).Exec(`
UPDATE holding_items
SET quantity = quantity - @q
WHERE holding_id = @hid
  AND item_id = @iid
  AND quantity > @q
`, map[string]any{
		"hid": holdingID,
		"iid": itemID,
		"q":   qty,
	})
	if tx.Error != nil {
		return false, tx.Error
	}
	if tx.RowsAffected > 0 {
		return true, nil
	}

	del := r.db.WithContext(ctx).
		Where("holding_id = ? AND item_id = ? AND quantity = ?", holdingID, itemID, qty).
		Delete(&models.HoldingItem{})
	return del.RowsAffected > 0, del.Error
}

func (r *holdingRepo) CountItems(ctx context.Context, holdingID uuid.UUID) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.HoldingItem{}).
		Where("holding_id = ?", holdingID).
		Count(&cnt).Error
	return cnt, err
}

func (r *holdingRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Holding{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}
