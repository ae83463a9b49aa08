package service

import (
	"context"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
)

type LineItemEvent struct {
	ItemID   uuid.UUID `json:"item_id"`
	Name     string    `json:"name"`
	Quantity int32     `json:"quantity"`
}

type RentRequestApprovedEvent struct {
	RequestID   uuid.UUID       `json:"request_id"`
	RequesterID uuid.UUID       `json:"requester_id"`
	ApprovedBy  uuid.UUID       `json:"approved_by"`
	Items       []LineItemEvent `json:"items"`
	ApprovedAt  time.Time       `json:"approved_at"`
}

type RentRequestRejectedEvent struct {
	RequestID   uuid.UUID `json:"request_id"`
	RequesterID uuid.UUID `json:"requester_id"`
	RejectedBy  uuid.UUID `json:"rejected_by"`
	Reason      string    `json:"reason,omitempty"`
	RejectedAt  time.Time `json:"rejected_at"`
}

type ReturnApprovedEvent struct {
	ReturnID   uuid.UUID       `json:"return_id"`
	HolderID   uuid.UUID       `json:"holder_id"`
	ApprovedBy uuid.UUID       `json:"approved_by"`
	Items      []LineItemEvent `json:"items"`
	ApprovedAt time.Time       `json:"approved_at"`
}

type OrderCreatedEvent struct {
	OrderID    uuid.UUID       `json:"order_id"`
	CustomerID uuid.UUID       `json:"customer_id"`
	ShopID     uuid.UUID       `json:"shop_id"`
	Items      []LineItemEvent `json:"items"`
	TotalCents int64           `json:"total_cents"`
	CreatedAt  time.Time       `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID         uuid.UUID          `json:"order_id"`
	CustomerID      uuid.UUID          `json:"customer_id"`
	ShopID          uuid.UUID          `json:"shop_id"`
	OldStatus       models.OrderStatus `json:"old_status"`
	NewStatus       models.OrderStatus `json:"new_status"`
	Reason          string             `json:"reason,omitempty"`
	ItemUnavailable bool               `json:"item_unavailable,omitempty"`
	ChangedAt       time.Time          `json:"changed_at"`
}

// EventBus — уведомления для requester-а/продавца. Публикация после коммита,
// best-effort: ошибка шины не откатывает бизнес-операцию.
type EventBus interface {
	PublishRentRequestApproved(ctx context.Context, e RentRequestApprovedEvent) error
	PublishRentRequestRejected(ctx context.Context, e RentRequestRejectedEvent) error
	PublishReturnApproved(ctx context.Context, e ReturnApprovedEvent) error
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
}

// AvailabilityCache — проекция остатков для витрины. Только чтение для показа:
// решения о коммите всегда принимаются по данным БД, кэш лишь инвалидируется.
type AvailabilityCache interface {
	GetAvailability(ctx context.Context, itemID uuid.UUID) (*ItemAvailability, bool)
	SetAvailability(ctx context.Context, av *ItemAvailability) error
	Invalidate(ctx context.Context, itemIDs ...uuid.UUID) error
}
