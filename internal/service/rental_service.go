package service

import (
	"context"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"

	"github.com/google/uuid"
)

type rentalService struct {
	repo   *repository.Repository
	events EventBus
	cache  AvailabilityCache
	now    func() time.Time
}

func NewRentalService(repo *repository.Repository, events EventBus, cache AvailabilityCache) RentalService {
	return &rentalService{
		repo:   repo,
		events: events,
		cache:  cache,
		now:    time.Now,
	}
}

// CreateRequest только фиксирует заявку. Резервирование происходит при одобрении,
// не при подаче: две pending-заявки могут вместе превышать остаток.
func (s *rentalService) CreateRequest(ctx context.Context, items []LineItemInput) (*models.RentRequest, error) {
	requesterID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	displayName, _ := DisplayNameFromContext(ctx)

	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	now := s.now()
	req := &models.RentRequest{
		RequesterID:          requesterID,
		RequesterDisplayName: displayName,
		Status:               models.RequestStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}

		item, err := s.repo.Catalog.GetByID(ctx, it.ItemID)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, ErrItemNotFound
		}
		if !item.IsActive {
			return nil, ErrInactiveItem
		}

		req.Items = append(req.Items, models.RentRequestItem{
			ItemID:    it.ItemID,
			Name:      item.Name,
			Quantity:  it.Quantity,
			CreatedAt: now,
		})
	}

	if err := s.repo.RentRequests.Create(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

func (s *rentalService) GetRequest(ctx context.Context, id uuid.UUID) (*models.RentRequest, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}

	req, err := s.repo.RentRequests.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if role != RoleAdmin && req.RequesterID != userID {
		return nil, ErrForbidden
	}
	return req, nil
}

func (s *rentalService) ListRequests(ctx context.Context, f RequestListFilter) ([]models.RentRequest, int64, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, 0, err
	}

	// не-админ видит только свои заявки
	if role != RoleAdmin {
		f.RequesterID = &userID
	}

	reqsPtr, total, err := s.repo.RentRequests.List(ctx, repository.RentRequestListFilter{
		RequesterID: f.RequesterID,
		Status:      f.Status,
		Limit:       f.Limit,
		Offset:      f.Offset,
	})
	if err != nil {
		return nil, 0, err
	}

	reqs := make([]models.RentRequest, len(reqsPtr))
	for i, r := range reqsPtr {
		reqs[i] = *r
	}
	return reqs, total, nil
}

// ApproveRequest — сердце workflow-а. Проверка остатка и его мутация идут одним
// условным UPDATE-ом на строку склада внутри общей транзакции: из двух гонящихся
// одобрений последней единицы второе получит InsufficientStock, не oversell.
func (s *rentalService) ApproveRequest(ctx context.Context, requestID uuid.UUID) error {
	approverID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	req, err := s.repo.RentRequests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}
	if req.Status != models.RequestStatusPending {
		return ErrInvalidState
	}
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}

	now := s.now()

	err = s.repo.RentRequests.WithTx(ctx, func(reqs repository.RentRequestRepo, inv repository.InventoryRepo, hold repository.HoldingRepo) error {
		// условный переход из PENDING: повторное одобрение упирается сюда
		ok, err := reqs.MarkApproved(ctx, requestID, approverID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidState
		}

		for _, it := range req.Items {
			ok, err := inv.TryReserve(ctx, it.ItemID, it.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				// перечитываем строку в этой же транзакции ради деталей для актора;
				// откат снимает и смену статуса, и уже сделанные резервы
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

		h, err := hold.GetByHolder(ctx, req.RequesterID)
		if err != nil {
			return err
		}
		if h == nil {
			h = &models.Holding{
				HolderID:  req.RequesterID,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := hold.Create(ctx, h); err != nil {
				return err
			}
		}

		for _, it := range req.Items {
			if err := hold.MergeItem(ctx, h.ID, it.ItemID, it.Name, it.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateItems(ctx, req.Items)

	if s.events != nil {
		evItems := make([]LineItemEvent, 0, len(req.Items))
		for _, it := range req.Items {
			evItems = append(evItems, LineItemEvent{ItemID: it.ItemID, Name: it.Name, Quantity: it.Quantity})
		}
		_ = s.events.PublishRentRequestApproved(ctx, RentRequestApprovedEvent{
			RequestID:   req.ID,
			RequesterID: req.RequesterID,
			ApprovedBy:  approverID,
			Items:       evItems,
			ApprovedAt:  now,
		})
	}

	return nil
}

// RejectRequest не трогает склад: при подаче заявки ничего не резервировалось,
// значит и освобождать нечего.
func (s *rentalService) RejectRequest(ctx context.Context, requestID uuid.UUID, reason *string) error {
	approverID, _, err := requireAuth(ctx)
	if err != nil {
		return err
	}

	req, err := s.repo.RentRequests.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}

	now := s.now()
	ok, err := s.repo.RentRequests.MarkRejected(ctx, requestID, approverID, now, sanitizeReason(reason))
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidState
	}

	if s.events != nil {
		_ = s.events.PublishRentRequestRejected(ctx, RentRequestRejectedEvent{
			RequestID:   req.ID,
			RequesterID: req.RequesterID,
			RejectedBy:  approverID,
			Reason:      derefReason(reason),
			RejectedAt:  now,
		})
	}

	return nil
}

func (s *rentalService) GetHolding(ctx context.Context, holderID uuid.UUID) (*models.Holding, error) {
	userID, role, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	if role != RoleAdmin && holderID != userID {
		return nil, ErrForbidden
	}

	h, err := s.repo.Holdings.GetByHolder(ctx, holderID)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, ErrHoldingNotFound
	}
	return h, nil
}

func (s *rentalService) invalidateItems(ctx context.Context, items []models.RentRequestItem) {
	if s.cache == nil {
		return
	}
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ItemID)
	}
	_ = s.cache.Invalidate(ctx, ids...)
}

func sanitizeReason(reason *string) *string {
	if reason == nil {
		return nil
	}
	r := *reason
	if len(r) > 500 {
		r = r[:500]
	}
	return &r
}

func derefReason(reason *string) string {
	if reason == nil {
		return ""
	}
	return *reason
}
