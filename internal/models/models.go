package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogItem — позиция каталога: спортинвентарь или блюдо столовой.
type CatalogItem struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShopID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"type:text;not null"`
	Description string    `gorm:"type:text"`
	PriceCents  int64     `gorm:"not null;default:0"`
	IsActive    bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (CatalogItem) TableName() string { return "catalog_items" }

// Inventory — 1:1 к позиции каталога.
// Инвариант: 0 <= reserved <= total_stock (дублируется CHECK-ом в миграции).
type Inventory struct {
	ItemID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	TotalStock int32     `gorm:"not null;default:0"`
	Reserved   int32     `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Inventory) TableName() string { return "inventories" }

// Available — сколько можно выдать прямо сейчас. Никогда не отрицательное.
func (i *Inventory) Available() int32 {
	if i.TotalStock <= i.Reserved {
		return 0
	}
	return i.TotalStock - i.Reserved
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "REQUEST_STATUS_PENDING"
	RequestStatusApproved RequestStatus = "REQUEST_STATUS_APPROVED"
	RequestStatusRejected RequestStatus = "REQUEST_STATUS_REJECTED"
)

// RentRequest — заявка на аренду. Никогда не удаляется: это журнал.
type RentRequest struct {
	ID                   uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequesterID          uuid.UUID     `gorm:"type:uuid;not null;index"`
	RequesterDisplayName string        `gorm:"type:text;not null"`
	Status               RequestStatus `gorm:"type:text;not null;default:'REQUEST_STATUS_PENDING';index"`

	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectedBy   *uuid.UUID `gorm:"type:uuid"`
	RejectedAt   *time.Time
	RejectReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []RentRequestItem `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

func (RentRequest) TableName() string { return "rent_requests" }

type RentRequestItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_rent_request_items_request_item"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_rent_request_items_request_item"`
	Name      string    `gorm:"type:text;not null"` // снапшот имени на момент заявки
	Quantity  int32     `gorm:"type:int;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (RentRequestItem) TableName() string { return "rent_request_items" }

// Holding — что сейчас на руках у держателя. Создаётся при одобрении аренды,
// сливается с существующим, удаляется когда не остаётся ни одной позиции.
type Holding struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HolderID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []HoldingItem `gorm:"foreignKey:HoldingID;constraint:OnDelete:CASCADE"`
}

func (Holding) TableName() string { return "holdings" }

type HoldingItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HoldingID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_holding_items_holding_item"`
	ItemID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_holding_items_holding_item"`
	Name      string    `gorm:"type:text;not null"`
	Quantity  int32     `gorm:"type:int;not null"` // всегда > 0, нулевые строки удаляются

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (HoldingItem) TableName() string { return "holding_items" }

type ReturnStatus string

const (
	ReturnStatusPending  ReturnStatus = "RETURN_STATUS_PENDING"
	ReturnStatusApproved ReturnStatus = "RETURN_STATUS_APPROVED"
	ReturnStatusRejected ReturnStatus = "RETURN_STATUS_REJECTED"
)

// ReturnRequest — заявка на возврат части или всего holding-а.
type ReturnRequest struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	HolderID uuid.UUID `gorm:"type:uuid;not null;index"`
	// Слабая ссылка без FK: holding удаляется при опустошении, заявка остаётся как журнал.
	HoldingID uuid.UUID    `gorm:"type:uuid;not null;index"`
	Status    ReturnStatus `gorm:"type:text;not null;default:'RETURN_STATUS_PENDING';index"`

	ApprovedBy   *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt   *time.Time
	RejectedBy   *uuid.UUID `gorm:"type:uuid"`
	RejectedAt   *time.Time
	RejectReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []ReturnRequestItem `gorm:"foreignKey:ReturnID;constraint:OnDelete:CASCADE"`
}

func (ReturnRequest) TableName() string { return "return_requests" }

type ReturnRequestItem struct {
	ID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ReturnID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_return_request_items_return_item"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_return_request_items_return_item"`
	Name     string    `gorm:"type:text;not null"`
	Quantity int32     `gorm:"type:int;not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (ReturnRequestItem) TableName() string { return "return_request_items" }

// Статус заказа еды — движение только вперёд, отклонение возможно до выдачи в доставку.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "ORDER_STATUS_PENDING"
	OrderStatusPreparing      OrderStatus = "ORDER_STATUS_PREPARING"
	OrderStatusOutForDelivery OrderStatus = "ORDER_STATUS_OUT_FOR_DELIVERY"
	OrderStatusDelivered      OrderStatus = "ORDER_STATUS_DELIVERED"
	OrderStatusRejected       OrderStatus = "ORDER_STATUS_REJECTED"
)

type FoodOrder struct {
	ID                  uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID          uuid.UUID   `gorm:"type:uuid;not null;index"`
	CustomerDisplayName string      `gorm:"type:text;not null"`
	ShopID              uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status              OrderStatus `gorm:"type:text;not null;default:'ORDER_STATUS_PENDING';index"`
	TotalPriceCents     int64       `gorm:"not null;default:0"`

	RejectReason *string `gorm:"type:text"`
	// Продавец пометил, что позиция кончилась. Только подсказка для витрины:
	// каталог этим флагом не деактивируется.
	ItemUnavailable bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []FoodOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (FoodOrder) TableName() string { return "food_orders" }

type FoodOrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_food_order_items_order_item"`
	ItemID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_food_order_items_order_item"`
	Name           string    `gorm:"type:text;not null"`
	Quantity       int32     `gorm:"type:int;not null"`
	UnitPriceCents int64     `gorm:"not null"`
	LineTotalCents int64     `gorm:"not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (FoodOrderItem) TableName() string { return "food_order_items" }
