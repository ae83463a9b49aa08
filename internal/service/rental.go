package service

import (
	"context"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"github.com/google/uuid"
)

type LineItemInput struct {
	ItemID   uuid.UUID
	Quantity int32
}

type RequestListFilter struct {
	RequesterID *uuid.UUID
	Status      *models.RequestStatus
	Limit       int
	Offset      int
}

type ReturnListFilter struct {
	HolderID *uuid.UUID
	Status   *models.ReturnStatus
	Limit    int
	Offset   int
}

// RentalService — путь заявки на аренду: создание, одобрение с резервированием,
// отклонение без инвентарных эффектов, просмотр holdings.
type RentalService interface {
	CreateRequest(ctx context.Context, items []LineItemInput) (*models.RentRequest, error)
	GetRequest(ctx context.Context, id uuid.UUID) (*models.RentRequest, error)
	ListRequests(ctx context.Context, f RequestListFilter) ([]models.RentRequest, int64, error)

	ApproveRequest(ctx context.Context, requestID uuid.UUID) error
	RejectRequest(ctx context.Context, requestID uuid.UUID, reason *string) error

	GetHolding(ctx context.Context, holderID uuid.UUID) (*models.Holding, error)
}

// ReturnService — обратный путь: заявка на возврат и её одобрение с освобождением резерва.
type ReturnService interface {
	CreateReturn(ctx context.Context, items []LineItemInput) (*models.ReturnRequest, error)
	GetReturn(ctx context.Context, id uuid.UUID) (*models.ReturnRequest, error)
	ListReturns(ctx context.Context, f ReturnListFilter) ([]models.ReturnRequest, int64, error)

	ApproveReturn(ctx context.Context, returnID uuid.UUID) error
	RejectReturn(ctx context.Context, returnID uuid.UUID, reason *string) error
}
