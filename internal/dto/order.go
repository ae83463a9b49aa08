package dto

import (
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
)

type CreateOrderRequest struct {
	ShopID string            `json:"shop_id" binding:"required,uuid"`
	Items  []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type AdvanceOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

type RejectOrderRequest struct {
	Reason          *string `json:"reason" binding:"omitempty,max=500"`
	ItemUnavailable bool    `json:"item_unavailable"`
}

type OrderItemResponse struct {
	ItemID         string `json:"item_id"`
	Name           string `json:"name"`
	Quantity       int32  `json:"quantity"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	LineTotalCents int64  `json:"line_total_cents"`
}

type OrderResponse struct {
	ID                  string              `json:"id"`
	CustomerID          string              `json:"customer_id"`
	CustomerDisplayName string              `json:"customer_display_name"`
	ShopID              string              `json:"shop_id"`
	Status              string              `json:"status"`
	TotalPriceCents     int64               `json:"total_price_cents"`
	RejectReason        *string             `json:"reject_reason,omitempty"`
	ItemUnavailable     bool                `json:"item_unavailable"`
	Items               []OrderItemResponse `json:"items"`
	CreatedAt           string              `json:"created_at"`
	UpdatedAt           string              `json:"updated_at"`
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int64           `json:"total"`
}

func FromOrder(m *models.FoodOrder) OrderResponse {
	items := make([]OrderItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, OrderItemResponse{
			ItemID:         it.ItemID.String(),
			Name:           it.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: it.UnitPriceCents,
			LineTotalCents: it.LineTotalCents,
		})
	}
	return OrderResponse{
		ID:                  m.ID.String(),
		CustomerID:          m.CustomerID.String(),
		CustomerDisplayName: m.CustomerDisplayName,
		ShopID:              m.ShopID.String(),
		Status:              string(m.Status),
		TotalPriceCents:     m.TotalPriceCents,
		RejectReason:        m.RejectReason,
		ItemUnavailable:     m.ItemUnavailable,
		Items:               items,
		CreatedAt:           m.CreatedAt.Format(time.RFC3339),
		UpdatedAt:           m.UpdatedAt.Format(time.RFC3339),
	}
}
