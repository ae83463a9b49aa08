package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CatalogListFilter struct {
	ShopID     *uuid.UUID
	Query      string // по name
	OnlyActive *bool
	Limit      int
	Offset     int
}

type CatalogRepo interface {
	Create(ctx context.Context, item *models.CatalogItem) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error)
	List(ctx context.Context, f CatalogListFilter) ([]models.CatalogItem, int64, error)
	BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	HasReferences(ctx context.Context, itemID uuid.UUID) (bool, error)
	EnsureInventoryRow(ctx context.Context, itemID uuid.UUID) error
}

type catalogRepo struct{ db *gorm.DB }

func NewCatalogRepo(db *gorm.DB) CatalogRepo { return &catalogRepo{db: db} }

func (r *catalogRepo) Create(ctx context.Context, item *models.CatalogItem) error {
	return r.db.WithContext(ctx).Select("*").Create(item).Error
}

func (r *catalogRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.CatalogItem{}).Where("id = ?", id).Updates(fields).Error
}

func (r *catalogRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.CatalogItem, error) {
	var item models.CatalogItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *catalogRepo) List(ctx context.Context, f CatalogListFilter) ([]models.CatalogItem, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CatalogItem{})

	if f.ShopID != nil {
		q = q.Where("shop_id = ?", *f.ShopID)
	}

	if f.OnlyActive != nil {
		q = q.Where("is_active = ?", *f.OnlyActive)
	}

	if s := strings.TrimSpace(f.Query); s != "" {
		q = q.Where("lower(name) LIKE lower(?)", "%"+s+"%")
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

	var list []models.CatalogItem
	if err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *catalogRepo) BatchGetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.CatalogItem, error) {
	if len(ids) == 0 {
		return []models.CatalogItem{}, nil
	}

	var list []models.CatalogItem
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error
	return list, err
}

func (r *catalogRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.CatalogItem{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

// HasReferences — есть ли строки заявок/заказов, ссылающиеся на позицию.
// На такие позиции в БД стоит ON DELETE RESTRICT.
func (r *catalogRepo) HasReferences(ctx context.Context, itemID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).Raw(`
		SELECT EXISTS (SELECT 1 FROM holding_items WHERE item_id = @id)
		    OR EXISTS (SELECT 1 FROM rent_request_items WHERE item_id = @id)
		    OR EXISTS (SELECT 1 FROM return_request_items WHERE item_id = @id)
		    OR EXISTS (SELECT 1 FROM food_order_items WHERE item_id = @id)`,
		map[string]any{"id": itemID},
	).Scan(&exists).Error
	return exists, err
}

func (r *catalogRepo) EnsureInventoryRow(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&models.Inventory{ItemID: itemID}).Error
}
