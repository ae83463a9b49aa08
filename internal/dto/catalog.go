package dto

import (
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
)

type CreateItemRequest struct {
	ShopID      string `json:"shop_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateItemRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
	PriceCents  *int64  `json:"price_cents" binding:"omitempty,gte=0"`
	IsActive    *bool   `json:"is_active"`
}

type ItemResponse struct {
	ID          string `json:"id"`
	ShopID      string `json:"shop_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"price_cents"`
	IsActive    bool   `json:"is_active"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type ItemListResponse struct {
	Items []ItemResponse `json:"items"`
	Total int64          `json:"total"`
}

type SetStockRequest struct {
	TotalStock int32 `json:"total_stock" binding:"gte=0"`
}

type AdjustStockRequest struct {
	Delta int32 `json:"delta" binding:"required"`
}

type StockResponse struct {
	ItemID     string `json:"item_id"`
	TotalStock int32  `json:"total_stock"`
	Reserved   int32  `json:"reserved"`
	Available  int32  `json:"available"`
}

type AvailabilityResponse struct {
	ItemID                 string `json:"item_id"`
	TotalStock             int32  `json:"total_stock"`
	Reserved               int32  `json:"reserved"`
	Available              int32  `json:"available"`
	PermanentlyUnavailable bool   `json:"permanently_unavailable"`
}

func FromItem(m *models.CatalogItem) ItemResponse {
	return ItemResponse{
		ID:          m.ID.String(),
		ShopID:      m.ShopID.String(),
		Name:        m.Name,
		Description: m.Description,
		PriceCents:  m.PriceCents,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   m.UpdatedAt.Format(time.RFC3339),
	}
}

func FromInventory(m *models.Inventory) StockResponse {
	return StockResponse{
		ItemID:     m.ItemID.String(),
		TotalStock: m.TotalStock,
		Reserved:   m.Reserved,
		Available:  m.Available(),
	}
}
