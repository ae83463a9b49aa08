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

type ReturnHandler struct {
	svc service.ReturnService
	log *zap.Logger
}

func NewReturnHandler(svc service.ReturnService, log *zap.Logger) *ReturnHandler {
	return &ReturnHandler{svc: svc, log: log}
}

// Create godoc
// @Summary Подать заявку на возврат
// @Description Количества сверяются с holding-ом заявителя; сам возврат происходит при одобрении
// @Tags returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateReturnRequest true "Возвращаемые позиции"
// @Success 201 {object} dto.ReturnRequestResponse
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 404 {object} dto.NotFoundErrorResponse "Нет holding-а"
// @Failure 422 {object} dto.StockErrorResponse "Возврат больше, чем на руках"
// @Router /api/v1/returns [post]
func (h *ReturnHandler) Create(c *gin.Context) {
	var req dto.CreateReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid return request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	items, ok := lineItems(c, req.Items)
	if !ok {
		return
	}

	created, err := h.svc.CreateReturn(c.Request.Context(), items)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromReturnRequest(created))
}

// Get godoc
// @Summary Получить заявку на возврат
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Success 200 {object} dto.ReturnRequestResponse
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Router /api/v1/returns/{id} [get]
func (h *ReturnHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	ret, err := h.svc.GetReturn(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromReturnRequest(ret))
}

// List godoc
// @Summary Список заявок на возврат
// @Description Фильтры: holder_id, status, limit/offset
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ReturnRequestListResponse
// @Router /api/v1/returns [get]
func (h *ReturnHandler) List(c *gin.Context) {
	f := service.ReturnListFilter{
		Limit:  atoiQuery(c, "limit", 50),
		Offset: atoiQuery(c, "offset", 0),
	}
	if s := c.Query("holder_id"); s != "" {
		hid, err := uuid.Parse(s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid holder_id", nil))
			return
		}
		f.HolderID = &hid
	}
	if s := c.Query("status"); s != "" {
		st := models.ReturnStatus(s)
		f.Status = &st
	}

	rets, total, err := h.svc.ListReturns(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	resp := dto.ReturnRequestListResponse{Returns: make([]dto.ReturnRequestResponse, 0, len(rets)), Total: total}
	for i := range rets {
		resp.Returns = append(resp.Returns, dto.FromReturnRequest(&rets[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// Approve godoc
// @Summary Одобрить возврат
// @Description Снимает резерв, ужимает holding, пустой holding удаляется
// @Tags returns
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse "Заявка уже обработана"
// @Failure 422 {object} dto.StockErrorResponse "Возврат больше, чем держится"
// @Router /api/v1/returns/{id}/approve [post]
func (h *ReturnHandler) Approve(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.svc.ApproveReturn(c.Request.Context(), id); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reject godoc
// @Summary Отклонить возврат
// @Tags returns
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID заявки"
// @Param reject body dto.RejectRequest false "Причина"
// @Success 204
// @Failure 404 {object} dto.NotFoundErrorResponse
// @Failure 409 {object} dto.ConflictErrorResponse
// @Router /api/v1/returns/{id}/reject [post]
func (h *ReturnHandler) Reject(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, dto.NewValidationError("invalid request body", nil))
		return
	}
	if err := h.svc.RejectReturn(c.Request.Context(), id, req.Reason); err != nil {
		respondServiceError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
