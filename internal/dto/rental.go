package dto

import (
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
)

type LineItemRequest struct {
	ItemID   string `json:"item_id" binding:"required,uuid"`
	Quantity int32  `json:"quantity" binding:"required,gt=0"`
}

type CreateRentRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RejectRequest struct {
	Reason *string `json:"reason" binding:"omitempty,max=500"`
}

type LineItemResponse struct {
	ItemID   string `json:"item_id"`
	Name     string `json:"name"`
	Quantity int32  `json:"quantity"`
}

type RentRequestResponse struct {
	ID                   string             `json:"id"`
	RequesterID          string             `json:"requester_id"`
	RequesterDisplayName string             `json:"requester_display_name"`
	Status               string             `json:"status"`
	RejectReason         *string            `json:"reject_reason,omitempty"`
	Items                []LineItemResponse `json:"items"`
	CreatedAt            string             `json:"created_at"`
}

type RentRequestListResponse struct {
	Requests []RentRequestResponse `json:"requests"`
	Total    int64                 `json:"total"`
}

type HoldingResponse struct {
	ID        string             `json:"id"`
	HolderID  string             `json:"holder_id"`
	Items     []LineItemResponse `json:"items"`
	UpdatedAt string             `json:"updated_at"`
}

type CreateReturnRequest struct {
	Items []LineItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ReturnRequestResponse struct {
	ID           string             `json:"id"`
	HolderID     string             `json:"holder_id"`
	HoldingID    string             `json:"holding_id"`
	Status       string             `json:"status"`
	RejectReason *string            `json:"reject_reason,omitempty"`
	Items        []LineItemResponse `json:"items"`
	CreatedAt    string             `json:"created_at"`
}

type ReturnRequestListResponse struct {
	Returns []ReturnRequestResponse `json:"returns"`
	Total   int64                   `json:"total"`
}

func FromRentRequest(m *models.RentRequest) RentRequestResponse {
	items := make([]LineItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, LineItemResponse{ItemID: it.ItemID.String(), Name: it.Name, Quantity: it.Quantity})
	}
	return RentRequestResponse{
		ID:                   m.ID.String(),
		RequesterID:          m.RequesterID.String(),
		RequesterDisplayName: m.RequesterDisplayName,
		Status:               string(m.Status),
		RejectReason:         m.RejectReason,
		Items:                items,
		CreatedAt:            m.CreatedAt.Format(time.RFC3339),
	}
}

func FromHolding(m *models.Holding) HoldingResponse {
	items := make([]LineItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, LineItemResponse{ItemID: it.ItemID.String(), Name: it.Name, Quantity: it.Quantity})
	}
	return HoldingResponse{
		ID:        m.ID.String(),
		HolderID:  m.HolderID.String(),
		Items:     items,
		UpdatedAt: m.UpdatedAt.Format(time.RFC3339),
	}
}

func FromReturnRequest(m *models.ReturnRequest) ReturnRequestResponse {
	items := make([]LineItemResponse, 0, len(m.Items))
	for _, it := range m.Items {
		items = append(items, LineItemResponse{ItemID: it.ItemID.String(), Name: it.Name, Quantity: it.Quantity})
	}
	return ReturnRequestResponse{
		ID:           m.ID.String(),
		HolderID:     m.HolderID.String(),
		HoldingID:    m.HoldingID.String(),
		Status:       string(m.Status),
		RejectReason: m.RejectReason,
		Items:        items,
		CreatedAt:    m.CreatedAt.Format(time.RFC3339),
	}
}
