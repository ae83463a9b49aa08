package repository

import (
	"context"
	"errors"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RentRequestListFilter struct {
	RequesterID *uuid.UUID
	Status      *models.RequestStatus
	Limit       int
	Offset      int
}

type RentRequestRepo interface {
	Create(ctx context.Context, req *models.RentRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.RentRequest, error)
	List(ctx context.Context, f RentRequestListFilter) ([]*models.RentRequest, int64, error)

	// Условные переходы статуса: срабатывают только из PENDING, успех — по RowsAffected.
	MarkApproved(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, approverID uuid.UUID, at time.Time, reason *string) (bool, error)

	WithTx(ctx context.Context, fn func(req RentRequestRepo, inv InventoryRepo, hold HoldingRepo) error) error
}

type rentRequestRepo struct{ db *gorm.DB }

func NewRentRequestRepo(db *gorm.DB) RentRequestRepo { return &rentRequestRepo{db: db} }

func (r *rentRequestRepo) Create(ctx context.Context, req *models.RentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *rentRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.RentRequest, error) {
	var req models.RentRequest
	err := r.db.WithContext(ctx).Preload("Items").First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &req, err
}

func (r *rentRequestRepo) List(ctx context.Context, f RentRequestListFilter) ([]*models.RentRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.RentRequest{})

	if f.RequesterID != nil {
		q = q.Where("requester_id = ?", *f.RequesterID)
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

	var list []*models.RentRequest
	err := q.Order("created_at ASC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *rentRequestRepo) MarkApproved(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.RentRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(map[string]any{
			"status":      models.RequestStatusApproved,
			"approved_by": approverID,
			"approved_at": at,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *rentRequestRepo) MarkRejected(ctx context.Context, id, approverID uuid.UUID, at time.Time, reason *string) (bool, error) {
	upd := map[string]any{
		"status":      models.RequestStatusRejected,
		"rejected_by": approverID,
		"rejected_at": at,
	}
	if reason != nil {
		upd["reject_reason"] = reason
	}

	tx := r.db.WithContext(ctx).Model(&models.RentRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *rentRequestRepo) WithTx(ctx context.Context, fn func(req RentRequestRepo, inv InventoryRepo, hold HoldingRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&rentRequestRepo{db: tx}, &inventoryRepo{db: tx}, &holdingRepo{db: tx})
	})
}
