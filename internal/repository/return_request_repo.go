package repository

import (
	"context"
	"errors"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReturnRequestListFilter struct {
	HolderID *uuid.UUID
	Status   *models.ReturnStatus
	Limit    int
	Offset   int
}

type ReturnRequestRepo interface {
	Create(ctx context.Context, req *models.ReturnRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	List(ctx context.Context, f ReturnRequestListFilter) ([]*models.ReturnRequest, int64, error)

	MarkApproved(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error)
	MarkRejected(ctx context.Context, id, approverID uuid.UUID, at time.Time, reason *string) (bool, error)

	WithTx(ctx context.Context, fn func(ret ReturnRequestRepo, inv InventoryRepo, hold HoldingRepo) error) error
}

type returnRequestRepo struct{ db *gorm.DB }

func NewReturnRequestRepo(db *gorm.DB) ReturnRequestRepo { return &returnRequestRepo{db: db} }

func (r *returnRequestRepo) Create(ctx context.Context, req *models.ReturnRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *returnRequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	var req models.ReturnRequest
	err := r.db.WithContext(ctx).Preload("Items").First(&req, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &req, err
}

func (r *returnRequestRepo) List(ctx context.Context, f ReturnRequestListFilter) ([]*models.ReturnRequest, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.ReturnRequest{})

	if f.HolderID != nil {
		q = q.Where("holder_id = ?", *f.HolderID)
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

	var list []*models.ReturnRequest
	err := q.Order("created_at ASC").Limit(f.Limit).Offset(f.Offset).Preload("Items").Find(&list).Error
	return list, total, err
}

func (r *returnRequestRepo) MarkApproved(ctx context.Context, id, approverID uuid.UUID, at time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ?", id, models.ReturnStatusPending).
		Updates(map[string]any{
			"status":      models.ReturnStatusApproved,
			"approved_by": approverID,
			"approved_at": at,
		})
	return tx.RowsAffected > 0, tx.Error
}

func (r *returnRequestRepo) MarkRejected(ctx context.Context, id, approverID uuid.UUID, at time.Time, reason *string) (bool, error) {
	upd := map[string]any{
		"status":      models.ReturnStatusRejected,
		"rejected_by": approverID,
		"rejected_at": at,
	}
	if reason != nil {
		upd["reject_reason"] = reason
	}

	tx := r.db.WithContext(ctx).Model(&models.ReturnRequest{}).
		Where("id = ? AND status = ?", id, models.ReturnStatusPending).
		Updates(upd)
	return tx.RowsAffected > 0, tx.Error
}

func (r *returnRequestRepo) WithTx(ctx context.Context, fn func(ret ReturnRequestRepo, inv InventoryRepo, hold HoldingRepo) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&returnRequestRepo{db: tx}, &inventoryRepo{db: tx}, &holdingRepo{db: tx})
	})
}
