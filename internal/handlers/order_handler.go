package handlers

import (
	"net/http"

	"github.com/varunhp06/campus-connect-sub000/internal/dto"
	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	svc service.OrderService
	log *zap.Logger
}

func NewOrderHandler(svc service.OrderService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{svc: svc, log: log}
}

// Create godoc
// @Summary Создать заказ еды
// @Description Цены снапшотятся из каталога; создание ничего не резервирует
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body dto.CreateOrderRequest true "Заказ"
// @Success 201 {object} dto.OrderResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create order request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	shopID, _ := uuid.Parse(req.ShopID)
	items, ok := lineItems(c, req.Items)
	if !ok {
		return
	}

	order, err := h.svc.CreateOrder(c.Request.Context(), service.CreateOrderInput{ShopID: shopID, Items: items})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromOrder(order))
}

// Get godoc
// @Summary Получить заказ
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.svc.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromOrder(order))
}

// List godoc
// @Summary Список заказов
// @Description Фильтры: customer_id, shop_id, status, limit/offset. Продавец видит только свою точку
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.OrderListResponse
// @Router /api/v1/orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	f := service.OrderListFilter{
		Limit:  atoiQuery(c, "limit", 50),
		Offset: atoiQuery(c, "offset", 0),
	}
	if s := c.Query("customer_id"); s != "" {
		cid, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid customer_id", nil))
			return
		}
		f.CustomerID = &cid
	}
	if s := c.Query("shop_id"); s != "" {
		sid, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid shop_id", nil))
			return
		}
		f.ShopID = &sid
	}
	if s := c.Query("status"); s != "" {
		st := models.OrderStatus(s)
		f.Status = &st
	}

	orders, total, err := h.svc.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	resp := dto.OrderListResponse{Orders: make([]dto.OrderResponse, 0, len(orders)), Total: total}
	for i := range orders {
		resp.Orders = append(resp.Orders, dto.FromOrder(&orders[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Advance godoc
// @Summary Продвинуть заказ на следующий статус
// @Description Только вперёд и только на один шаг: PENDING → PREPARING → OUT_FOR_DELIVERY → DELIVERED.
// @Description Переход в PREPARING резервирует склад, DELIVERED списывает его
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param advance body dto.AdvanceOrderRequest true "Целевой статус"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Недопустимый переход"
// @Failure 422 {object} dto.StockErrorResponse "Не хватает остатка для резерва"
// @Router /api/v1/orders/{id}/advance [post]
func (h *OrderHandler) Advance(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdvanceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.svc.AdvanceOrder(c.Request.Context(), id, models.OrderStatus(req.Status)); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject godoc
// @Summary Отклонить заказ
// @Description Допустимо из PENDING и PREPARING; из PREPARING резерв возвращается.
// @Description item_unavailable — пометка для витрины, каталог не меняется
// @Tags orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заказа"
// @Param reject body dto.RejectOrderRequest false "Причина"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/orders/{id}/reject [post]
func (h *OrderHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.svc.RejectOrder(c.Request.Context(), id, service.RejectOrderInput{
		Reason:          req.Reason,
		ItemUnavailable: req.ItemUnavailable,
	}); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
