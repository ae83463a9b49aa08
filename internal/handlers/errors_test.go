package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/varunhp06/campus-connect-sub000/internal/handlers"
	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// rentalStub подменяет сервис функциями: тестам нужен только путь ошибок.
type rentalStub struct {
	approve func(ctx context.Context, id uuid.UUID) error
}

func (s *rentalStub) CreateRequest(ctx context.Context, items []service.LineItemInput) (*models.RentRequest, error) {
	return nil, nil
}
func (s *rentalStub) GetRequest(ctx context.Context, id uuid.UUID) (*models.RentRequest, error) {
	return nil, nil
}
func (s *rentalStub) ListRequests(ctx context.Context, f service.RequestListFilter) ([]models.RentRequest, int64, error) {
	return nil, 0, nil
}
func (s *rentalStub) ApproveRequest(ctx context.Context, id uuid.UUID) error { return s.approve(ctx, id) }
func (s *rentalStub) RejectRequest(ctx context.Context, id uuid.UUID, reason *string) error {
	return nil
}
func (s *rentalStub) GetHolding(ctx context.Context, holderID uuid.UUID) (*models.Holding, error) {
	return nil, nil
}

func approveRouter(stub *rentalStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewRentalHandler(stub, zap.NewNop())
	r := gin.New()
	r.POST("/requests/:id/approve", h.Approve)
	return r
}

func doApprove(t *testing.T, r *gin.Engine, id string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/requests/"+id+"/approve", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorMapping(t *testing.T) {
	itemID := uuid.New()

	cases := []struct {
		name     string
		err      error
		want     int
		wantCode string
	}{
		{"not found", service.ErrRequestNotFound, http.StatusNotFound, "not_found"},
		{"already moderated", service.ErrInvalidState, http.StatusConflict, "invalid_state"},
		{"unauthorized", service.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{"forbidden", service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{
			"insufficient stock",
			&service.InsufficientStockError{ItemID: itemID, ItemName: "kayak", Available: 1, Requested: 4},
			http.StatusUnprocessableEntity,
			"insufficient_stock",
		},
		{
			"over return",
			&service.OverReturnError{ItemID: itemID, ItemName: "kayak", Held: 1, Requested: 4},
			http.StatusUnprocessableEntity,
			"over_return",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := approveRouter(&rentalStub{approve: func(ctx context.Context, id uuid.UUID) error { return tc.err }})
			w := doApprove(t, r, uuid.NewString())
			if w.Code != tc.want {
				t.Fatalf("status: got %d want %d (body %s)", w.Code, tc.want, w.Body.String())
			}
			var body struct {
				Code  string `json:"code"`
				Stock *struct {
					ItemID    string `json:"item_id"`
					ItemName  string `json:"item_name"`
					Available int32  `json:"available"`
					Held      int32  `json:"held"`
					Requested int32  `json:"requested"`
				} `json:"stock"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("body: %v", err)
			}
			if body.Code != tc.wantCode {
				t.Fatalf("code: got %q want %q", body.Code, tc.wantCode)
			}
			if tc.wantCode == "insufficient_stock" {
				if body.Stock == nil || body.Stock.Available != 1 || body.Stock.Requested != 4 || body.Stock.ItemName != "kayak" {
					t.Fatalf("stock detail: %+v", body.Stock)
				}
			}
			if tc.wantCode == "over_return" {
				if body.Stock == nil || body.Stock.Held != 1 || body.Stock.Requested != 4 {
					t.Fatalf("stock detail: %+v", body.Stock)
				}
			}
		})
	}
}

func TestApprove_InvalidID(t *testing.T) {
	r := approveRouter(&rentalStub{approve: func(ctx context.Context, id uuid.UUID) error { return nil }})
	w := doApprove(t, r, "not-a-uuid")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d", w.Code)
	}
}

func TestApprove_Success(t *testing.T) {
	var gotID uuid.UUID
	r := approveRouter(&rentalStub{approve: func(ctx context.Context, id uuid.UUID) error {
		gotID = id
		return nil
	}})
	want := uuid.New()
	w := doApprove(t, r, want.String())
	if w.Code != http.StatusNoContent {
		t.Fatalf("status: got %d", w.Code)
	}
	if gotID != want {
		t.Fatalf("id passed through: got %s want %s", gotID, want)
	}
}
