package service

import (
	"context"
	"strings"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"

	"github.com/google/uuid"
)

type catalogService struct {
	repo  *repository.Repository
	cache AvailabilityCache
	now   func() time.Time
}

func NewCatalogService(repo *repository.Repository, cache AvailabilityCache) CatalogService {
	return &catalogService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

// canManage: админ — всё, продавец — только свою точку.
func (s *catalogService) canManage(ctx context.Context, shopID uuid.UUID) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	switch role {
	case RoleAdmin:
		return nil
	case RoleVendor:
		own, ok := ShopIDFromContext(ctx)
		if !ok || own != shopID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrForbidden
	}
}

func (s *catalogService) CreateItem(ctx context.Context, in ItemInput) (*models.CatalogItem, error) {
	if err := s.canManage(ctx, in.ShopID); err != nil {
		return nil, err
	}

	now := s.now()
	item := &models.CatalogItem{
		ShopID:      in.ShopID,
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		PriceCents:  in.PriceCents,
		IsActive:    in.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Catalog.Create(ctx, item); err != nil {
			return err
		}
		// 1:1 строка склада
		return tx.Catalog.EnsureInventoryRow(ctx, item.ID)
	})
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, itemID uuid.UUID, patch ItemPatch) (*models.CatalogItem, error) {
	item, err := s.repo.Catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if err := s.canManage(ctx, item.ShopID); err != nil {
		return nil, err
	}

	fields := map[string]any{}

	if patch.Name != nil {
		fields["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		fields["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.PriceCents != nil {
		fields["price_cents"] = *patch.PriceCents
	}
	if patch.IsActive != nil {
		fields["is_active"] = *patch.IsActive
	}

	if len(fields) == 0 {
		return item, nil
	}

	fields["updated_at"] = s.now()

	if err := s.repo.Catalog.UpdateFields(ctx, itemID, fields); err != nil {
		return nil, err
	}
	return s.repo.Catalog.GetByID(ctx, itemID)
}

func (s *catalogService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error) {
	item, err := s.repo.Catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	return item, nil
}

func (s *catalogService) ListItems(ctx context.Context, f CatalogListFilter) ([]models.CatalogItem, int64, error) {
	return s.repo.Catalog.List(ctx, repository.CatalogListFilter{
		ShopID:     f.ShopID,
		Query:      f.Query,
		OnlyActive: f.OnlyActive,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
}

// DeleteItem отказывает, пока на позицию есть живой резерв: holdings ссылаются
// на каталог, история не должна терять адресата. Деактивация — через UpdateItem.
func (s *catalogService) DeleteItem(ctx context.Context, itemID uuid.UUID) (bool, error) {
	item, err := s.repo.Catalog.GetByID(ctx, itemID)
	if err != nil {
		return false, err
	}
	if item == nil {
		return false, ErrItemNotFound
	}
	if err := s.canManage(ctx, item.ShopID); err != nil {
		return false, err
	}

	inv, err := s.repo.Inventories.Get(ctx, itemID)
	if err != nil {
		return false, err
	}
	if inv != nil && inv.Reserved > 0 {
		return false, ErrCannotDeleteItemWithReservations
	}

	// история заявок и заказов хранит FK на позицию (ON DELETE RESTRICT)
	referenced, err := s.repo.Catalog.HasReferences(ctx, itemID)
	if err != nil {
		return false, err
	}
	if referenced {
		return false, ErrCannotDeleteReferencedItem
	}

	ok, err := s.repo.Catalog.Delete(ctx, itemID)
	if err != nil {
		return false, err
	}
	if ok && s.cache != nil {
		_ = s.cache.Invalidate(ctx, itemID)
	}
	return ok, nil
}

func (s *catalogService) GetStock(ctx context.Context, itemID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.Inventories.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, ErrInventoryNotFound
	}
	return inv, nil
}

func (s *catalogService) SetTotalStock(ctx context.Context, itemID uuid.UUID, total int32) (*models.Inventory, error) {
	item, err := s.repo.Catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if err := s.canManage(ctx, item.ShopID); err != nil {
		return nil, err
	}
	if total < 0 {
		return nil, ErrInvalidQuantity
	}

	ok, err := s.repo.Inventories.SetTotalStock(ctx, itemID, total)
	if err != nil {
		return nil, err
	}
	if !ok {
		// либо строки нет, либо total меньше текущего резерва
		inv, err := s.repo.Inventories.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, ErrInventoryNotFound
		}
		return nil, &InsufficientStockError{
			ItemID:    itemID,
			ItemName:  item.Name,
			Available: inv.Reserved,
			Requested: total,
		}
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, itemID)
	}
	return s.repo.Inventories.Get(ctx, itemID)
}

func (s *catalogService) AdjustTotalStock(ctx context.Context, itemID uuid.UUID, delta int32) (*models.Inventory, error) {
	item, err := s.repo.Catalog.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, ErrItemNotFound
	}
	if err := s.canManage(ctx, item.ShopID); err != nil {
		return nil, err
	}

	ok, err := s.repo.Inventories.AdjustTotalStock(ctx, itemID, delta)
	if err != nil {
		return nil, err
	}
	if !ok {
		inv, err := s.repo.Inventories.Get(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if inv == nil {
			return nil, ErrInventoryNotFound
		}
		return nil, &InsufficientStockError{
			ItemID:    itemID,
			ItemName:  item.Name,
			Available: inv.Available(),
			Requested: -delta,
		}
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, itemID)
	}
	return s.repo.Inventories.Get(ctx, itemID)
}

// Availability — путь витрины, единственный читатель кэша. Кэш-промах идёт в БД
// и прогревает ключ; мутации склада этот ключ инвалидируют. Протухший кэш не
// страшен: коммиты всё равно перепроверяют остаток по БД.
func (s *catalogService) Availability(ctx context.Context, itemID uuid.UUID) (*ItemAvailability, error) {
	if s.cache != nil {
		if av, ok := s.cache.GetAvailability(ctx, itemID); ok {
			return av, nil
		}
	}

	inv, err := s.GetStock(ctx, itemID)
	if err != nil {
		return nil, err
	}

	av := &ItemAvailability{
		ItemID:                 itemID,
		TotalStock:             inv.TotalStock,
		Reserved:               inv.Reserved,
		Available:              inv.Available(),
		PermanentlyUnavailable: inv.TotalStock == 0,
	}

	if s.cache != nil {
		_ = s.cache.SetAvailability(ctx, av)
	}
	return av, nil
}
