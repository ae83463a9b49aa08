package repository

import (
	"context"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FoodOrderItemRepo interface {
	BulkCreate(ctx context.Context, items []models.FoodOrderItem) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.FoodOrderItem, error)
}

type foodOrderItemRepo struct{ db *gorm.DB }

func NewFoodOrderItemRepo(db *gorm.DB) FoodOrderItemRepo { return &foodOrderItemRepo{db: db} }

func (r *foodOrderItemRepo) BulkCreate(ctx context.Context, items []models.FoodOrderItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *foodOrderItemRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.FoodOrderItem, error) {
	var list []models.FoodOrderItem
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}
