package handlers

import (
	"net/http"
	"strconv"

	"github.com/varunhp06/campus-connect-sub000/internal/dto"
	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogHandler struct {
	svc service.CatalogService
	log *zap.Logger
}

func NewCatalogHandler(svc service.CatalogService, log *zap.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log}
}

// Create godoc
// @Summary Создать позицию каталога
// @Description Создаёт позицию и её инвентарную строку (остаток 0)
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param item body dto.CreateItemRequest true "Данные позиции"
// @Success 201 {object} dto.ItemResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Failure 403 {object} dto.ForbiddenErrorResponse
// @Failure 500 {object} dto.InternalErrorResponse
// @Router /api/v1/catalog/items [post]
func (h *CatalogHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create item request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	shopID, _ := uuid.Parse(req.ShopID)
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	item, err := h.svc.CreateItem(c.Request.Context(), service.ItemInput{
		ShopID:      shopID,
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		IsActive:    isActive,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromItem(item))
}

// Update godoc
// @Summary Обновить позицию каталога
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Param item body dto.UpdateItemRequest true "Изменяемые поля"
// @Success 200 {object} dto.ItemResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/catalog/items/{id} [patch]
func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update item request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}

	item, err := h.svc.UpdateItem(c.Request.Context(), id, service.ItemPatch{
		Name:        req.Name,
		Description: req.Description,
		PriceCents:  req.PriceCents,
		IsActive:    req.IsActive,
	})
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromItem(item))
}

// Get godoc
// @Summary Получить позицию каталога
// @Tags catalog
// @Produce json
// @Param id path string true "ID позиции"
// @Success 200 {object} dto.ItemResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/catalog/items/{id} [get]
func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.svc.GetItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromItem(item))
}

// List godoc
// @Summary Список позиций каталога
// @Description Фильтры: shop_id, q (поиск по имени), only_active, limit/offset
// @Tags catalog
// @Produce json
// @Success 200 {object} dto.ItemListResponse
// @Router /api/v1/catalog/items [get]
func (h *CatalogHandler) List(c *gin.Context) {
	f := service.CatalogListFilter{
		Query:  c.Query("q"),
		Limit:  atoiQuery(c, "limit", 50),
		Offset: atoiQuery(c, "offset", 0),
	}
	if s := c.Query("shop_id"); s != "" {
		sid, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid shop_id", nil))
			return
		}
		f.ShopID = &sid
	}
	if s := c.Query("only_active"); s != "" {
		v := s == "true"
		f.OnlyActive = &v
	}

	items, total, err := h.svc.ListItems(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	resp := dto.ItemListResponse{Items: make([]dto.ItemResponse, 0, len(items)), Total: total}
	for i := range items {
		resp.Items = append(resp.Items, dto.FromItem(&items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary Удалить позицию каталога
// @Description Отказывает, пока по позиции есть активный резерв
// @Tags catalog
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/catalog/items/{id} [delete]
func (h *CatalogHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	deleted, err := h.svc.DeleteItem(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, dto.NewNotFoundError("catalog item not found"))
		return
	}
	c.Status(http.StatusNoContent)
}

// GetStock godoc
// @Summary Текущий остаток позиции
// @Tags catalog
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/catalog/items/{id}/stock [get]
func (h *CatalogHandler) GetStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	inv, err := h.svc.GetStock(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromInventory(inv))
}

// SetStock godoc
// @Summary Установить общий остаток
// @Description Новый total_stock не может опуститься ниже текущего резерва
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Param stock body dto.SetStockRequest true "Новый остаток"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 422 {object} dto.StockErrorResponse
// @Router /api/v1/catalog/items/{id}/stock [put]
func (h *CatalogHandler) SetStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.SetStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	inv, err := h.svc.SetTotalStock(c.Request.Context(), id, req.TotalStock)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromInventory(inv))
}

// AdjustStock godoc
// @Summary Скорректировать общий остаток на дельту
// @Tags catalog
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID позиции"
// @Param stock body dto.AdjustStockRequest true "Дельта"
// @Success 200 {object} dto.StockResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 422 {object} dto.StockErrorResponse
// @Router /api/v1/catalog/items/{id}/stock [post]
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	inv, err := h.svc.AdjustTotalStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromInventory(inv))
}

// Availability godoc
// @Summary Доступность позиции для витрины
// @Description Читает из кеша, при промахе из БД. available = total_stock - reserved, не ниже 0
// @Tags catalog
// @Produce json
// @Param id path string true "ID позиции"
// @Success 200 {object} dto.AvailabilityResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/catalog/items/{id}/availability [get]
func (h *CatalogHandler) Availability(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	av, err := h.svc.Availability(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.AvailabilityResponse{
		ItemID:                 av.ItemID.String(),
		TotalStock:             av.TotalStock,
		Reserved:               av.Reserved,
		Available:              av.Available,
		PermanentlyUnavailable: av.PermanentlyUnavailable,
	})
}

func atoiQuery(c *gin.Context, name string, def int) int {
	s := c.Query(name)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
