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

type RentalHandler struct {
	svc service.RentalService
	log *zap.Logger
}

func NewRentalHandler(svc service.RentalService, log *zap.Logger) *RentalHandler {
	return &RentalHandler{svc: svc, log: log}
}

func lineItems(c *gin.Context, in []dto.LineItemRequest) ([]service.LineItemInput, bool) {
	out := make([]service.LineItemInput, 0, len(in))
	for _, it := range in {
		id, err := uuid.Parse(it.ItemID)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid item_id", []dto.FieldError{{Field: "items.item_id", Message: "must be a uuid"}}))
			return nil, false
		}
		out = append(out, service.LineItemInput{ItemID: id, Quantity: it.Quantity})
	}
	return out, true
}

// Create godoc
// @Summary Подать заявку на аренду
// @Description Заявка ничего не резервирует: резерв появляется только при одобрении
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateRentRequest true "Позиции заявки"
// @Success 201 {object} dto.RentRequestResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.UnauthorizedErrorResponse
// @Router /api/v1/rentals/requests [post]
func (h *RentalHandler) Create(c *gin.Context) {
	var req dto.CreateRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid rent request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	items, ok := lineItems(c, req.Items)
	if !ok {
		return
	}

	created, err := h.svc.CreateRequest(c.Request.Context(), items)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromRentRequest(created))
}

// Get godoc
// @Summary Получить заявку на аренду
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Success 200 {object} dto.RentRequestResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/rentals/requests/{id} [get]
func (h *RentalHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	req, err := h.svc.GetRequest(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromRentRequest(req))
}

// List godoc
// @Summary Список заявок на аренду
// @Description Фильтры: requester_id, status, limit/offset
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.RentRequestListResponse
// @Router /api/v1/rentals/requests [get]
func (h *RentalHandler) List(c *gin.Context) {
	f := service.RequestListFilter{
		Limit:  atoiQuery(c, "limit", 50),
		Offset: atoiQuery(c, "offset", 0),
	}
	if s := c.Query("requester_id"); s != "" {
		rid, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid requester_id", nil))
			return
		}
		f.RequesterID = &rid
	}
	if s := c.Query("status"); s != "" {
		st := models.RequestStatus(s)
		f.Status = &st
	}

	reqs, total, err := h.svc.ListRequests(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	resp := dto.RentRequestListResponse{Requests: make([]dto.RentRequestResponse, 0, len(reqs)), Total: total}
	for i := range reqs {
		resp.Requests = append(resp.Requests, dto.FromRentRequest(&reqs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary Одобрить заявку на аренду
// @Description Атомарно резервирует все позиции и вливает их в holding заявителя.
// @Description Нехватка хотя бы одной позиции откатывает всё
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Заявка уже обработана"
// @Failure 422 {object} dto.StockErrorResponse "Не хватает остатка"
// @Router /api/v1/rentals/requests/{id}/approve [post]
func (h *RentalHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ApproveRequest(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject godoc
// @Summary Отклонить заявку на аренду
// @Description Никаких инвентарных эффектов, только смена статуса
// @Tags rentals
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Param reject body dto.RejectRequest false "Причина"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/rentals/requests/{id}/reject [post]
func (h *RentalHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.svc.RejectRequest(c.Request.Context(), id, req.Reason); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetHolding godoc
// @Summary Что сейчас на руках у держателя
// @Tags rentals
// @Produce json
// @Security BearerAuth
// @Param holder_id path string true "ID держателя"
// @Success 200 {object} dto.HoldingResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/rentals/holdings/{holder_id} [get]
func (h *RentalHandler) GetHolding(c *gin.Context) {
	holderID, ok := parseUUIDParam(c, "holder_id")
	if !ok {
		return
	}
	holding, err := h.svc.GetHolding(c.Request.Context(), holderID)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromHolding(holding))
}
