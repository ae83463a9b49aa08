package service

import (
	"context"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"

	"github.com/google/uuid"
)

type returnService struct {
	repo   *repository.Repository
	events EventBus
	cache  AvailabilityCache
	now    func() time.Time
}

func NewReturnService(repo *repository.Repository, events EventBus, cache AvailabilityCache) ReturnService {
	return &returnService{
		repo:   repo,
		events: events,
		cache:  cache,
		now:    time.Now,
	}
}

// CreateReturn проверяет заявку против текущего holding-а держателя. Проверка
// best-effort: авторитетная повторяется при одобрении.
func (s *returnService) CreateReturn(ctx context.Context, items []LineItemInput) (*models.ReturnRequest, error) {
	holderID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	h, err := s.repo.Holdings.GetByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHoldingNotFound
	}

	held := make(map[uuid.UUID]models.HoldingItem, len(h.Items))
	for _, it := range h.Items {
		held[it.ItemID] = it
	}

	now := s.now()
	ret := &models.ReturnRequest{
		HolderID:  holderID,
		HoldingID: h.ID,
		Status:    models.ReturnStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		cur, ok := held[it.ItemID]
		if !ok {
			return nil, &OverReturnError{ItemID: it.ItemID, Held: 0, Requested: it.Quantity}
		}
		if it.Quantity > cur.Quantity {
			return nil, &OverReturnError{ItemID: it.ItemID, ItemName: cur.Name, Held: cur.Quantity, Requested: it.Quantity}
		}

		ret.Items = append(ret.Items, models.ReturnRequestItem{
			ItemID:    it.ItemID,
			Name:      cur.Name,
			Quantity:  it.Quantity,
			CreatedAt: now,
		})
	}

	if err := s.repo.Returns.Create(ctx, ret); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *returnService) GetReturn(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	ret, err := s.repo.Returns.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ret == nil {
		return nil, ErrReturnNotFound
	}
	if role != RoleAdmin && ret.HolderID != userID {
		return nil, ErrForbidden
	}
	return ret, nil
}

func (s *returnService) ListReturns(ctx context.Context, f ReturnListFilter) ([]models.ReturnRequest, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	if role != RoleAdmin {
		f.HolderID = &userID
	}

	retsPtr, total, err := s.repo.Returns.List(ctx, repository.ReturnRequestListFilter{
		HolderID: f.HolderID,
		Status:   f.Status,
		Limit:    f.Limit,
		Offset:   f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	rets := make([]models.ReturnRequest, len(retsPtr))
	for i, r := range retsPtr {
		rets[i] = *r
	}
	return rets, total, nil
}

// ApproveReturn зеркален ApproveRequest: сначала условная смена статуса, затем
// уменьшение holding-а и освобождение резерва — всё одной транзакцией.
func (s *returnService) ApproveReturn(ctx context.Context, returnID uuid.UUID) error {
	approverID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	ret, err := s.repo.Returns.GetByID(ctx, returnID)
	if err != nil {
		return err
	}
	if ret == nil {
		return ErrReturnNotFound
	}
	if ret.Status != models.ReturnStatusPending {
		return ErrInvalidState
	}

	now := s.now()

	err = s.repo.Returns.WithTx(ctx, func(rets repository.ReturnRequestRepo, inv repository.InventoryRepo, hold repository.HoldingRepo) error {
		ok, err := rets.MarkApproved(ctx, returnID, approverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}

		// свежий holding внутри транзакции: возвращать можно только то,
		// что реально на руках в момент одобрения
		h, err := hold.GetByID(ctx, ret.HoldingID)
		if err != nil {
			return err
		}
		if h == nil {
			return ErrHoldingNotFound
		}

		held := make(map[uuid.UUID]models.HoldingItem, len(h.Items))
		for _, it := range h.Items {
			held[it.ItemID] = it
		}

		for _, it := range ret.Items {
			cur, exists := held[it.ItemID]
			if !exists || it.Quantity > cur.Quantity {
				heldQty := int32(0)
				if exists {
					heldQty = cur.Quantity
				}
				return &OverReturnError{ItemID: it.ItemID, ItemName: it.Name, Held: heldQty, Requested: it.Quantity}
			}
		}

		for _, it := range ret.Items {
			ok, err := hold.DecrementItem(ctx, h.ID, it.ItemID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return &OverReturnError{ItemID: it.ItemID, ItemName: it.Name, Requested: it.Quantity}
			}
			if _, err := inv.Release(ctx, it.ItemID, it.Quantity); err != nil {
				return err
			}
		}

		cnt, err := hold.CountItems(ctx, h.ID)
		if err != nil {
			return err
		}
		if cnt == 0 {
			// пустой holding не храним
			if _, err := hold.Delete(ctx, h.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		ids := make([]uuid.UUID, 0, len(ret.Items))
		for _, it := range ret.Items {
			ids = append(ids, it.ItemID)
		}
		_ = s.cache.Invalidate(ctx, ids...)
	}

	if s.events != nil {
		evItems := make([]LineItemEvent, 0, len(ret.Items))
		for _, it := range ret.Items {
			evItems = append(evItems, LineItemEvent{ItemID: it.ItemID, Name: it.Name, Quantity: it.Quantity})
		}
		_ = s.events.PublishReturnApproved(ctx, ReturnApprovedEvent{
			ReturnID:   ret.ID,
			HolderID:   ret.HolderID,
			ApprovedBy: approverID,
			Items:      evItems,
			ApprovedAt: now,
		})
	}

	return nil
}

func (s *returnService) RejectReturn(ctx context.Context, returnID uuid.UUID, reason *string) error {
	approverID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	ret, err := s.repo.Returns.GetByID(ctx, returnID)
	if err != nil {
		return err
	}
	if ret == nil {
		return ErrReturnNotFound
	}

	ok, err := s.repo.Returns.MarkRejected(ctx, returnID, approverID, s.now(), sanitizeReason(reason))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}
	return nil
}
