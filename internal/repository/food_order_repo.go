package repository

import (
	"context"
	"errors"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FoodOrderListFilter struct {
	CustomerID *uuid.UUID
	ShopID     *uuid.UUID
	Status     *models.OrderStatus
	Limit      int
	Offset     int
}

type FoodOrderRepo interface {
	Create(ctx context.Context, o *models.FoodOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FoodOrder, error)
	GetByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.FoodOrder, error)
	List(ctx context.Context, f FoodOrderListFilter) ([]*models.FoodOrder, int64, error)
	UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64) error

	// Условный переход: выполняется только если заказ сейчас в статусе from.
	MarkStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, extra map[string]any) (bool, error)

	WithTx(ctx context.Context, fn func(ord FoodOrderRepo, items FoodOrderItemRepo, inv InventoryRepo) error) error
}

type foodOrderRepo struct{ db *gorm.DB }

func NewFoodOrderRepo(db *gorm.DB) FoodOrderRepo { return &foodOrderRepo{db: db} }

func (r *foodOrderRepo) Create(ctx context.Context, o *models.FoodOrder) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *foodOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.FoodOrder, error) {
	var ord models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *foodOrderRepo) GetByIDForCustomer(ctx context.Context, id, customerID uuid.UUID) (*models.FoodOrder, error) {
	var ord models.FoodOrder
	err := r.db.WithContext(ctx).Preload("Items").First(&ord, "id = ? AND customer_id = ?", id, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ord, err
}

func (r *foodOrderRepo) List(ctx context.Context, f FoodOrderListFilter) ([]*models.FoodOrder, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.FoodOrder{})

	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.ShopID != nil {
		q = q.Where("shop_id = ?", *f.ShopID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit <= 0 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}

	var list []*models.FoodOrder
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *foodOrderRepo) UpdateTotals(ctx context.Context, id uuid.UUID, totalCents int64) error {
	return r.db.WithContext(ctx).Model(&models.FoodOrder{}).Where("id = ?", id).
		Update("total_price_cents", totalCents).Error
}

func (r *foodOrderRepo) MarkStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, extra map[string]any) (bool, error) {
	upd := map[string]any{"status": to}
	for k, v := range extra {
		upd[k] = v
	}

	tx := r.db.WithContext(ctx).Model(&models.FoodOrder{}).
		Where("id = ? AND status = ?", id, from).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *foodOrderRepo) WithTx(ctx context.Context, fn func(ord FoodOrderRepo, items FoodOrderItemRepo, inv InventoryRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&foodOrderRepo{db: tx}, &foodOrderItemRepo{db: tx}, &inventoryRepo{db: tx})
	})
}
