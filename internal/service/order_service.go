package service

import (
	"context"
	"fmt"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"

	"github.com/google/uuid"
)

type orderService struct {
	repo   *repository.Repository
	events EventBus
	cache  AvailabilityCache
	now    func() time.Time
}

func NewOrderService(repo *repository.Repository, events EventBus, cache AvailabilityCache) OrderService {
	return &orderService{
		repo:   repo,
		events: events,
		cache:  cache,
		now:    time.Now,
	}
}

// forwardOf — единственный легальный следующий шаг для каждого статуса.
func forwardOf(s models.OrderStatus) (models.OrderStatus, bool) {
	switch s {
	case models.OrderStatusPending:
		return models.OrderStatusPreparing, true
	case models.OrderStatusPreparing:
		return models.OrderStatusOutForDelivery, true
	case models.OrderStatusOutForDelivery:
		return models.OrderStatusDelivered, true
	default:
		return "", false
	}
}

func (s *orderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.FoodOrder, error) {
	customerID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	displayName, _ := DisplayNameFromContext(ctx)

	if len(in.Items) == 0 {
		return nil, ErrEmptyItems
	}

	ids := make([]uuid.UUID, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, it.ItemID)
	}

	catalog, err := s.repo.Catalog.BatchGetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.CatalogItem, len(catalog))
	for _, c := range catalog {
		byID[c.ID] = c
	}

	var (
		now     = s.now()
		itemsDB []models.FoodOrderItem
	)

	for _, it := range in.Items {
		c, ok := byID[it.ItemID]
		if !ok || c.ShopID != in.ShopID {
			return nil, ErrItemNotFound
		}
		if !c.IsActive {
			return nil, ErrInactiveItem
		}

		// снапшот цены на момент заказа
		itemsDB = append(itemsDB, models.FoodOrderItem{
			ItemID:         it.ItemID,
			Name:           c.Name,
			Quantity:       it.Quantity,
			UnitPriceCents: c.PriceCents,
			LineTotalCents: int64(it.Quantity) * c.PriceCents,
			CreatedAt:      now,
		})
	}

	order := &models.FoodOrder{
		CustomerID:          customerID,
		CustomerDisplayName: displayName,
		ShopID:              in.ShopID,
		Status:              models.OrderStatusPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = s.repo.Orders.WithTx(ctx, func(or repository.FoodOrderRepo, ir repository.FoodOrderItemRepo, _ repository.InventoryRepo) error {
		if err := or.Create(ctx, order); err != nil {
			return err
		}

		for i := range itemsDB {
			itemsDB[i].OrderID = order.ID
		}
		if err := ir.BulkCreate(ctx, itemsDB); err != nil {
			return err
		}

		// итог считаем по реально записанным строкам
		rows, err := ir.ListByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		var total int64
		for _, row := range rows {
			total += row.LineTotalCents
		}
		if err := or.UpdateTotals(ctx, order.ID, total); err != nil {
			return err
		}

		ordWith, err := or.GetByID(ctx, order.ID)
		if err != nil {
			return err
		}
		order = ordWith
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.events != nil {
		evItems := make([]LineItemEvent, 0, len(itemsDB))
		for _, it := range itemsDB {
			evItems = append(evItems, LineItemEvent{ItemID: it.ItemID, Name: it.Name, Quantity: it.Quantity})
		}
		_ = s.events.PublishOrderCreated(ctx, OrderCreatedEvent{
			OrderID:    order.ID,
			CustomerID: order.CustomerID,
			ShopID:     order.ShopID,
			Items:      evItems,
			TotalCents: order.TotalPriceCents,
			CreatedAt:  order.CreatedAt,
		})
	}

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.FoodOrder, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	var ord *models.FoodOrder
	if role == RoleAdmin || role == RoleVendor {
		ord, err = s.repo.Orders.GetByID(ctx, id)
	} else {
		ord, err = s.repo.Orders.GetByIDForCustomer(ctx, id, userID)
	}
	if err != nil {
		return nil, err
	}
	if ord == nil {
		return nil, ErrOrderNotFound
	}

	if role == RoleVendor {
		if shopID, ok := ShopIDFromContext(ctx); !ok || ord.ShopID != shopID {
			return nil, ErrForbidden
		}
	}
	return ord, nil
}

func (s *orderService) ListOrders(ctx context.Context, f OrderListFilter) ([]models.FoodOrder, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	switch role {
	case RoleAdmin:
		// любые фильтры
	case RoleVendor:
		shopID, ok := ShopIDFromContext(ctx)
		if !ok {
			return nil, 0, ErrForbidden
		}
		f.ShopID = &shopID
		f.CustomerID = nil
	default:
		f.CustomerID = &userID
	}

	ordersPtr, total, err := s.repo.Orders.List(ctx, repository.FoodOrderListFilter{
		CustomerID: f.CustomerID,
		ShopID:     f.ShopID,
		Status:     f.Status,
		Limit:      f.Limit,
		Offset:     f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	orders := make([]models.FoodOrder, len(ordersPtr))
	for i, o := range ordersPtr {
		orders[i] = *o
	}
	return orders, total, nil
}

// AdvanceOrder двигает заказ строго на один шаг вперёд. Взятие в работу
// (PENDING → PREPARING) резервирует склад тем же условным путём, что и аренда;
// выдача (→ DELIVERED) списывает резерв окончательно.
func (s *orderService) AdvanceOrder(ctx context.Context, id uuid.UUID, next models.OrderStatus) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrOrderNotFound
	}

	if role == RoleVendor {
		if shopID, ok := ShopIDFromContext(ctx); !ok || ord.ShopID != shopID {
			return ErrForbidden
		}
	}

	want, ok := forwardOf(ord.Status)
	if !ok || next != want {
		return ErrInvalidState
	}

	from := ord.Status

	err = s.repo.Orders.WithTx(ctx, func(or repository.FoodOrderRepo, _ repository.FoodOrderItemRepo, inv repository.InventoryRepo) error {
		ok, err := or.MarkStatus(ctx, id, from, next, nil)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}

		switch next {
		case models.OrderStatusPreparing:
			for _, it := range ord.Items {
				ok, err := inv.TryReserve(ctx, it.ItemID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					cur, err := inv.Get(ctx, it.ItemID)
					if err != nil {
						return err
					}
					if cur == nil {
						return ErrInventoryNotFound
					}
					return &InsufficientStockError{
						ItemID:    it.ItemID,
						ItemName:  it.Name,
						Available: cur.Available(),
						Requested: it.Quantity,
					}
				}
			}
		case models.OrderStatusDelivered:
			for _, it := range ord.Items {
				ok, err := inv.Consume(ctx, it.ItemID, it.Quantity)
				if err != nil {
					return err
				}
				if !ok {
					// резерв обязан покрывать выдаваемое; рассинхрон — повод откатить всё
					return fmt.Errorf("consume reservation for item %s: %w", it.ItemID, ErrInvalidState)
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil && (next == models.OrderStatusPreparing || next == models.OrderStatusDelivered) {
		ids := make([]uuid.UUID, 0, len(ord.Items))
		for _, it := range ord.Items {
			ids = append(ids, it.ItemID)
		}
		_ = s.cache.Invalidate(ctx, ids...)
	}

	s.publishStatusChanged(ctx, ord, from, next, "", false)
	return nil
}

// RejectOrder допустим из PENDING (склад не тронут) и из PREPARING (резерв
// освобождается). Из OUT_FOR_DELIVERY пути назад нет.
func (s *orderService) RejectOrder(ctx context.Context, id uuid.UUID, in RejectOrderInput) error {
	_, role, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	ord, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if ord == nil {
		return ErrOrderNotFound
	}

	if role == RoleVendor {
		if shopID, ok := ShopIDFromContext(ctx); !ok || ord.ShopID != shopID {
			return ErrForbidden
		}
	}

	from := ord.Status
	if from != models.OrderStatusPending && from != models.OrderStatusPreparing {
		return ErrInvalidState
	}

	extra := map[string]any{"item_unavailable": in.ItemUnavailable}
	if r := sanitizeReason(in.Reason); r != nil {
		extra["reject_reason"] = r
	}

	err = s.repo.Orders.WithTx(ctx, func(or repository.FoodOrderRepo, _ repository.FoodOrderItemRepo, inv repository.InventoryRepo) error {
		ok, err := or.MarkStatus(ctx, id, from, models.OrderStatusRejected, extra)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}

		if from == models.OrderStatusPreparing {
			for _, it := range ord.Items {
				if _, err := inv.Release(ctx, it.ItemID, it.Quantity); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil && from == models.OrderStatusPreparing {
		ids := make([]uuid.UUID, 0, len(ord.Items))
		for _, it := range ord.Items {
			ids = append(ids, it.ItemID)
		}
		_ = s.cache.Invalidate(ctx, ids...)
	}

	s.publishStatusChanged(ctx, ord, from, models.OrderStatusRejected, derefReason(in.Reason), in.ItemUnavailable)
	return nil
}

func (s *orderService) publishStatusChanged(ctx context.Context, ord *models.FoodOrder, from, to models.OrderStatus, reason string, itemUnavailable bool) {
	if s.events == nil {
		return
	}
	_ = s.events.PublishOrderStatusChanged(ctx, OrderStatusChangedEvent{
		OrderID:         ord.ID,
		CustomerID:      ord.CustomerID,
		ShopID:          ord.ShopID,
		OldStatus:       from,
		NewStatus:       to,
		Reason:          reason,
		ItemUnavailable: itemUnavailable,
		ChangedAt:       s.now(),
	})
}
