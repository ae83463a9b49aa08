package service

import (
	"context"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
)

type ItemInput struct {
	ShopID      uuid.UUID
	Name        string
	Description string
	PriceCents  int64
	IsActive    bool
}

type ItemPatch struct {
	Name        *string
	Description *string
	PriceCents  *int64
	IsActive    *bool
}

type CatalogListFilter struct {
	ShopID     *uuid.UUID
	Query      string
	OnlyActive *bool
	Limit      int
	Offset     int
}

// ItemAvailability — проекция остатка для витрины.
type ItemAvailability struct {
	ItemID     uuid.UUID
	TotalStock int32
	Reserved   int32
	Available  int32
	// total_stock == 0 — позиция недоступна навсегда, сколько бы ни вернули
	PermanentlyUnavailable bool
}

type CatalogService interface {
	CreateItem(ctx context.Context, in ItemInput) (*models.CatalogItem, error)
	UpdateItem(ctx context.Context, itemID uuid.UUID, patch ItemPatch) (*models.CatalogItem, error)
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.CatalogItem, error)
	ListItems(ctx context.Context, f CatalogListFilter) ([]models.CatalogItem, int64, error)
	DeleteItem(ctx context.Context, itemID uuid.UUID) (bool, error)

	GetStock(ctx context.Context, itemID uuid.UUID) (*models.Inventory, error)
	SetTotalStock(ctx context.Context, itemID uuid.UUID, total int32) (*models.Inventory, error)
	AdjustTotalStock(ctx context.Context, itemID uuid.UUID, delta int32) (*models.Inventory, error)
	Availability(ctx context.Context, itemID uuid.UUID) (*ItemAvailability, error)
}
