package repository

import (
	"context"
	"errors"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InventoryRepo interface {
	Get(ctx context.Context, itemID uuid.UUID) (*models.Inventory, error)
	SetTotalStock(ctx context.Context, itemID uuid.UUID, total int32) (bool, error)
	AdjustTotalStock(ctx context.Context, itemID uuid.UUID, delta int32) (bool, error)

	// Атомарные операции над счётчиком reserved. Успех определяется по RowsAffected:
	// два гонящихся одобрения сериализуются на строке, второе получает false.
	// TryReserve: if total_stock - reserved >= qty then reserved += qty
	TryReserve(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error)
	// Release: reserved -= qty с полом на нуле — резерв не бывает отрицательным
	Release(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error)
	// Consume: списываем выданное окончательно — total_stock -= qty, reserved -= qty
	Consume(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error)
}

type inventoryRepo struct{ db *gorm.DB }

func NewInventoryRepo(db *gorm.DB) InventoryRepo { return &inventoryRepo{db: db} }

func (r *inventoryRepo) Get(ctx context.Context, itemID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).First(&inv, "item_id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &inv, err
}

// SetTotalStock не даёт опустить total_stock ниже текущего reserved.
func (r *inventoryRepo) SetTotalStock(ctx context.Context, itemID uuid.UUID, total int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET total_stock = @total,
    updated_at = now()
WHERE item_id = @iid
  AND @total >= reserved
`, map[string]any{
		"iid":   itemID,
		"total": total,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) AdjustTotalStock(ctx context.Context, itemID uuid.UUID, delta int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET total_stock = total_stock + @delta,
    updated_at = now()
WHERE item_id = @iid
  AND total_stock + @delta >= reserved
`, map[string]any{
		"iid":   itemID,
		"delta": delta,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) TryReserve(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error) {
	// атомарно: reserved += qty, если хватает свободного остатка
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET reserved = reserved + @q,
    updated_at = now()
WHERE item_id = @iid
  AND total_stock - reserved >= @q
`, map[string]any{
		"iid": itemID,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) Release(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET reserved = GREATEST(reserved - @q, 0),
    updated_at = now()
WHERE item_id = @iid
`, map[string]any{
		"iid": itemID,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *inventoryRepo) Consume(ctx context.Context, itemID uuid.UUID, qty int32) (bool, error) {
	// выдача заказа: резерв и общий фонд уменьшаются вместе
	tx := r.db.WithContext(ctx).Exec(`
UPDATE inventories
SET total_stock = total_stock - @q,
    reserved = reserved - @q,
    updated_at = now()
WHERE item_id = @iid
  AND reserved >= @q
  AND total_stock >= @q
`, map[string]any{
		"iid": itemID,
		"q":   qty,
	})
	return tx.RowsAffected > 0, tx.Error
}
