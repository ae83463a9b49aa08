package handlers

import (
	"errors"
	"net/http"

	"github.com/varunhp06/campus-connect-sub000/internal/dto"
	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// respondServiceError переводит ошибки сервисного слоя в HTTP-ответы.
// Складские нарушения уходят как 422 с деталями, чтобы клиент мог показать
// актору, чего и сколько не хватило.
func respondServiceError(c *gin.Context, log *zap.Logger, err error) {
	var insufficient *service.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewStockError("insufficient_stock", insufficient.Error(), &dto.StockErrorDetail{
			ItemID:    insufficient.ItemID.String(),
			ItemName:  insufficient.ItemName,
			Available: insufficient.Available,
			Requested: insufficient.Requested,
		}))
		return
	}
	var overReturn *service.OverReturnError
	if errors.As(err, &overReturn) {
		c.JSON(http.StatusUnprocessableEntity, dto.NewStockError("over_return", overReturn.Error(), &dto.StockErrorDetail{
			ItemID:    overReturn.ItemID.String(),
			ItemName:  overReturn.ItemName,
			Held:      overReturn.Held,
			Requested: overReturn.Requested,
		}))
		return
	}

	switch {
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, dto.NewUnauthorizedError("unauthorized"))
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.NewForbiddenError("forbidden"))
	case errors.Is(err, service.ErrItemNotFound),
		errors.Is(err, service.ErrInventoryNotFound),
		errors.Is(err, service.ErrRequestNotFound),
		errors.Is(err, service.ErrReturnNotFound),
		errors.Is(err, service.ErrHoldingNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, dto.NewNotFoundError(err.Error()))
	case errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrCannotDeleteItemWithReservations),
		errors.Is(err, service.ErrCannotDeleteReferencedItem):
		c.JSON(http.StatusConflict, dto.NewConflictError(err.Error()))
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInactiveItem):
		c.JSON(http.StatusBadRequest, dto.NewValidationError(err.Error(), nil))
	default:
		log.Error("unhandled service error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.NewInternalError(""))
	}
}

// parseUUIDParam возвращает uuid из path-параметра или отвечает 400 сам.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid "+name, []dto.FieldError{{Field: name, Message: "must be a uuid"}}))
		return uuid.Nil, false
	}
	return id, true
}
