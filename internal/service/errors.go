package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrItemNotFound      = errors.New("catalog item not found")
	ErrInventoryNotFound = errors.New("inventory not found")
	ErrRequestNotFound   = errors.New("rent request not found")
	ErrReturnNotFound    = errors.New("return request not found")
	ErrHoldingNotFound   = errors.New("holding not found")
	ErrOrderNotFound     = errors.New("order not found")

	// ErrInvalidState — объект не в том статусе, из которого возможен переход.
	// Не ретраится: UI протух, пусть перечитает.
	ErrInvalidState = errors.New("invalid state for requested transition")

	ErrEmptyItems      = errors.New("empty items")
	ErrInvalidQuantity = errors.New("quantity must be > 0")
	ErrInactiveItem    = errors.New("catalog item is inactive")

	ErrCannotDeleteItemWithReservations = errors.New("cannot delete item with reserved stock")
	ErrCannotDeleteReferencedItem       = errors.New("cannot delete item referenced by requests or orders")

	ErrInsufficientStock = errors.New("insufficient stock")
	ErrOverReturn        = errors.New("return quantity exceeds held quantity")
)

// InsufficientStockError несёт детали для актора: что именно не влезло и сколько было.
type InsufficientStockError struct {
	ItemID    uuid.UUID
	ItemName  string
	Available int32
	Requested int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d", e.ItemName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

type OverReturnError struct {
	ItemID    uuid.UUID
	ItemName  string
	Held      int32
	Requested int32
}

func (e *OverReturnError) Error() string {
	return fmt.Sprintf("over-return for %q: held %d, requested %d", e.ItemName, e.Held, e.Requested)
}

func (e *OverReturnError) Is(target error) bool { return target == ErrOverReturn }
