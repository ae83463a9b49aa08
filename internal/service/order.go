package service

import (
	"context"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
)

type CreateOrderInput struct {
	ShopID uuid.UUID
	Items  []LineItemInput
}

type OrderListFilter struct {
	CustomerID *uuid.UUID
	ShopID     *uuid.UUID
	Status     *models.OrderStatus
	Limit      int
	Offset     int
}

type RejectOrderInput struct {
	Reason *string
	// Продавец помечает, что позиция кончилась. Витрина может предложить
	// деактивацию, но сам флаг каталог не меняет.
	ItemUnavailable bool
}

// OrderService — заказы столовой. Создание ничего не резервирует; статусы идут
// только вперёд: PENDING → PREPARING → OUT_FOR_DELIVERY → DELIVERED, с отклонением
// из PENDING и PREPARING. Взятие в работу резервирует склад, выдача списывает его.
type OrderService interface {
	CreateOrder(ctx context.Context, in CreateOrderInput) (*models.FoodOrder, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.FoodOrder, error)
	ListOrders(ctx context.Context, f OrderListFilter) ([]models.FoodOrder, int64, error)

	AdvanceOrder(ctx context.Context, id uuid.UUID, next models.OrderStatus) error
	RejectOrder(ctx context.Context, id uuid.UUID, in RejectOrderInput) error
}
