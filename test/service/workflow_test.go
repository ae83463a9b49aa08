package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/varunhp06/campus-connect-sub000/internal/migrate"
	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"
	"github.com/varunhp06/campus-connect-sub000/internal/service"
	"github.com/varunhp06/campus-connect-sub000/pkg/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type env struct {
	db      *gorm.DB
	repos   *repository.Repository
	catalog service.CatalogService
	rental  service.RentalService
	returns service.ReturnService
	orders  service.OrderService
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateCampusDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repos := repository.New(db)
	return &env{
		db:      db,
		repos:   repos,
		catalog: service.NewCatalogService(repos, nil),
		rental:  service.NewRentalService(repos, nil, nil),
		returns: service.NewReturnService(repos, nil, nil),
		orders:  service.NewOrderService(repos, nil, nil),
	}
}

func studentCtx(id uuid.UUID) context.Context {
	ctx := service.WithUserID(context.Background(), id)
	ctx = service.WithRole(ctx, service.RoleStudent)
	return service.WithDisplayName(ctx, "Sam Student")
}

func adminCtx() context.Context {
	ctx := service.WithUserID(context.Background(), uuid.New())
	return service.WithRole(ctx, service.RoleAdmin)
}

func vendorCtx(shopID uuid.UUID) context.Context {
	ctx := service.WithUserID(context.Background(), uuid.New())
	ctx = service.WithRole(ctx, service.RoleVendor)
	return service.WithShopID(ctx, shopID)
}

// seedItem создаёт позицию с остатком через каталожный сервис, как это сделал бы админ.
func (e *env) seedItem(t *testing.T, total int32) *models.CatalogItem {
	t.Helper()
	ctx := adminCtx()
	item, err := e.catalog.CreateItem(ctx, service.ItemInput{
		ShopID:     uuid.New(),
		Name:       "volleyball",
		PriceCents: 1200,
		IsActive:   true,
	})
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if total > 0 {
		if _, err := e.catalog.SetTotalStock(ctx, item.ID, total); err != nil {
			t.Fatalf("SetTotalStock: %v", err)
		}
	}
	return item
}

func (e *env) stock(t *testing.T, itemID uuid.UUID) *models.Inventory {
	t.Helper()
	inv, err := e.repos.Inventories.Get(context.Background(), itemID)
	if err != nil || inv == nil {
		t.Fatalf("inventory: %v %v", inv, err)
	}
	return inv
}

func TestRentWorkflow_RoundTrip(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 10)
	student := uuid.New()
	sctx := studentCtx(student)
	actx := adminCtx()

	req, err := e.rental.CreateRequest(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	// подача заявки склад не трогает
	if inv := e.stock(t, item.ID); inv.Reserved != 0 {
		t.Fatalf("reserved after create: %d", inv.Reserved)
	}

	if err := e.rental.ApproveRequest(actx, req.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 3 || inv.TotalStock != 10 {
		t.Fatalf("after approve: %+v", inv)
	}

	h, err := e.rental.GetHolding(sctx, student)
	if err != nil {
		t.Fatalf("GetHolding: %v", err)
	}
	if len(h.Items) != 1 || h.Items[0].Quantity != 3 {
		t.Fatalf("holding: %+v", h.Items)
	}

	// вторая одобренная заявка вливается в тот же holding
	req2, err := e.rental.CreateRequest(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateRequest 2: %v", err)
	}
	if err := e.rental.ApproveRequest(actx, req2.ID); err != nil {
		t.Fatalf("ApproveRequest 2: %v", err)
	}
	h2, _ := e.rental.GetHolding(sctx, student)
	if h2.ID != h.ID || len(h2.Items) != 1 || h2.Items[0].Quantity != 5 {
		t.Fatalf("merged holding: %+v", h2.Items)
	}

	// полный возврат: резерв снят, пустой holding удалён
	ret, err := e.returns.CreateReturn(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 5}})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if err := e.returns.ApproveReturn(actx, ret.ID); err != nil {
		t.Fatalf("ApproveReturn: %v", err)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 || inv.TotalStock != 10 {
		t.Fatalf("after return: %+v", inv)
	}
	if _, err := e.rental.GetHolding(sctx, student); !errors.Is(err, service.ErrHoldingNotFound) {
		t.Fatalf("holding should be gone, got %v", err)
	}
	// заявки остаются в журнале
	got, err := e.rental.GetRequest(sctx, req.ID)
	if err != nil || got.Status != models.RequestStatusApproved {
		t.Fatalf("request after round trip: %+v %v", got, err)
	}
}

func TestRentApprove_InsufficientStock_RollsBackEverything(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 2)
	student := uuid.New()

	req, err := e.rental.CreateRequest(studentCtx(student), []service.LineItemInput{{ItemID: item.ID, Quantity: 3}})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	err = e.rental.ApproveRequest(adminCtx(), req.ID)
	if !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
	var detail *service.InsufficientStockError
	if !errors.As(err, &detail) {
		t.Fatalf("expected typed error, got %T", err)
	}
	if detail.Available != 2 || detail.Requested != 3 || detail.ItemID != item.ID {
		t.Fatalf("detail: %+v", detail)
	}

	// всё откатилось: заявка снова PENDING, резерва нет, holding не появился
	got, _ := e.rental.GetRequest(adminCtx(), req.ID)
	if got.Status != models.RequestStatusPending {
		t.Fatalf("request status after rollback: %s", got.Status)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 {
		t.Fatalf("reserved after rollback: %d", inv.Reserved)
	}
	if _, err := e.rental.GetHolding(studentCtx(student), student); !errors.Is(err, service.ErrHoldingNotFound) {
		t.Fatalf("no holding expected, got %v", err)
	}
}

func TestRentReject_TerminalAndNoInventoryEffect(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	student := uuid.New()

	req, err := e.rental.CreateRequest(studentCtx(student), []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	reason := "equipment under maintenance"
	if err := e.rental.RejectRequest(adminCtx(), req.ID, &reason); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 {
		t.Fatalf("reject must not touch stock: %d", inv.Reserved)
	}

	got, _ := e.rental.GetRequest(adminCtx(), req.ID)
	if got.Status != models.RequestStatusRejected || got.RejectReason == nil || *got.RejectReason != reason {
		t.Fatalf("rejected request: %+v", got)
	}

	// терминальные статусы неизменяемы
	if err := e.rental.ApproveRequest(adminCtx(), req.ID); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("approve after reject: %v", err)
	}
	if err := e.rental.RejectRequest(adminCtx(), req.ID, nil); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("reject after reject: %v", err)
	}
}

func TestReturn_OverReturn(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	student := uuid.New()
	sctx := studentCtx(student)
	actx := adminCtx()

	req, _ := e.rental.CreateRequest(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err := e.rental.ApproveRequest(actx, req.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	// больше, чем на руках — отказ уже при подаче
	_, err := e.returns.CreateReturn(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 3}})
	if !errors.Is(err, service.ErrOverReturn) {
		t.Fatalf("expected over-return, got %v", err)
	}
	var detail *service.OverReturnError
	if !errors.As(err, &detail) || detail.Held != 2 || detail.Requested != 3 {
		t.Fatalf("over-return detail: %+v", detail)
	}

	// две конкурирующие заявки на полный возврат: одобряется только первая
	ret1, err := e.returns.CreateReturn(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateReturn 1: %v", err)
	}
	ret2, err := e.returns.CreateReturn(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateReturn 2: %v", err)
	}

	if err := e.returns.ApproveReturn(actx, ret1.ID); err != nil {
		t.Fatalf("ApproveReturn 1: %v", err)
	}
	// holding опустел и удалён — вторая заявка уже не может быть одобрена
	if err := e.returns.ApproveReturn(actx, ret2.ID); err == nil {
		t.Fatalf("ApproveReturn 2: expected error")
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 {
		t.Fatalf("reserved after returns: %d", inv.Reserved)
	}
}

func TestOrderWorkflow_ForwardOnly(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	customer := uuid.New()
	cctx := studentCtx(customer)
	vctx := vendorCtx(item.ShopID)

	ord, err := e.orders.CreateOrder(cctx, service.CreateOrderInput{
		ShopID: item.ShopID,
		Items:  []service.LineItemInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if ord.TotalPriceCents != 2400 || ord.Status != models.OrderStatusPending {
		t.Fatalf("fresh order: %+v", ord)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 {
		t.Fatalf("create must not reserve: %d", inv.Reserved)
	}

	// перескок через статус запрещён
	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusOutForDelivery); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("skip ahead: %v", err)
	}

	// взятие в работу резервирует склад
	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusPreparing); err != nil {
		t.Fatalf("advance to preparing: %v", err)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 2 || inv.TotalStock != 5 {
		t.Fatalf("after preparing: %+v", inv)
	}

	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusOutForDelivery); err != nil {
		t.Fatalf("advance to out_for_delivery: %v", err)
	}
	// из OUT_FOR_DELIVERY отклонить уже нельзя
	if err := e.orders.RejectOrder(vctx, ord.ID, service.RejectOrderInput{}); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("reject from out_for_delivery: %v", err)
	}

	// выдача списывает остаток насовсем
	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusDelivered); err != nil {
		t.Fatalf("advance to delivered: %v", err)
	}
	if inv := e.stock(t, item.ID); inv.Reserved != 0 || inv.TotalStock != 3 {
		t.Fatalf("after delivered: %+v", inv)
	}

	// DELIVERED терминален
	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusDelivered); !errors.Is(err, service.ErrInvalidState) {
		t.Fatalf("advance after delivered: %v", err)
	}

	got, err := e.orders.GetOrder(cctx, ord.ID)
	if err != nil || got.Status != models.OrderStatusDelivered {
		t.Fatalf("final order: %+v %v", got, err)
	}
}

func TestOrderReject_FromPreparing_ReleasesReservation(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	customer := uuid.New()
	vctx := vendorCtx(item.ShopID)

	ord, err := e.orders.CreateOrder(studentCtx(customer), service.CreateOrderInput{
		ShopID: item.ShopID,
		Items:  []service.LineItemInput{{ItemID: item.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if err := e.orders.AdvanceOrder(vctx, ord.ID, models.OrderStatusPreparing); err != nil {
		t.Fatalf("advance: %v", err)
	}

	reason := "ingredient ran out"
	if err := e.orders.RejectOrder(vctx, ord.ID, service.RejectOrderInput{Reason: &reason, ItemUnavailable: true}); err != nil {
		t.Fatalf("RejectOrder: %v", err)
	}

	if inv := e.stock(t, item.ID); inv.Reserved != 0 || inv.TotalStock != 5 {
		t.Fatalf("after reject: %+v", inv)
	}

	got, _ := e.orders.GetOrder(vctx, ord.ID)
	if got.Status != models.OrderStatusRejected || got.RejectReason == nil || *got.RejectReason != reason || !got.ItemUnavailable {
		t.Fatalf("rejected order: %+v", got)
	}

	// пометка item_unavailable — только подсказка, каталог не деактивируется
	citem, err := e.catalog.GetItem(context.Background(), item.ID)
	if err != nil || !citem.IsActive {
		t.Fatalf("catalog item must stay active: %+v %v", citem, err)
	}
}

// Две заявки на последнюю единицу, одобряемые параллельно: выигрывает ровно одна.
func TestConcurrentApprovals_LastUnit(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 1)
	actx := adminCtx()

	reqA, err := e.rental.CreateRequest(studentCtx(uuid.New()), []service.LineItemInput{{ItemID: item.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateRequest A: %v", err)
	}
	reqB, err := e.rental.CreateRequest(studentCtx(uuid.New()), []service.LineItemInput{{ItemID: item.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateRequest B: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{reqA.ID, reqB.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			errs[i] = e.rental.ApproveRequest(actx, id)
		}(i, id)
	}
	wg.Wait()

	okCount := 0
	for _, err := range errs {
		if err == nil {
			okCount++
			continue
		}
		if !errors.Is(err, service.ErrInsufficientStock) {
			t.Fatalf("loser error: %v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("expected exactly one winner, got %d (errs=%v)", okCount, errs)
	}

	if inv := e.stock(t, item.ID); inv.Reserved != 1 || inv.TotalStock != 1 {
		t.Fatalf("final stock: %+v", inv)
	}
}

func TestCatalogService_StockGuards(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	actx := adminCtx()
	sctx := studentCtx(uuid.New())

	req, _ := e.rental.CreateRequest(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 3}})
	if err := e.rental.ApproveRequest(actx, req.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}

	// total нельзя опустить ниже резерва
	if _, err := e.catalog.SetTotalStock(actx, item.ID, 2); !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("SetTotalStock below reserved: %v", err)
	}
	if _, err := e.catalog.AdjustTotalStock(actx, item.ID, -3); !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("AdjustTotalStock below reserved: %v", err)
	}

	// позицию с активным резервом нельзя удалить
	if _, err := e.catalog.DeleteItem(actx, item.ID); !errors.Is(err, service.ErrCannotDeleteItemWithReservations) {
		t.Fatalf("DeleteItem with reservations: %v", err)
	}

	av, err := e.catalog.Availability(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if av.Available != 2 || av.Reserved != 3 || av.PermanentlyUnavailable {
		t.Fatalf("availability: %+v", av)
	}
}

// Резерв вернулся в ноль, но история заявок осталась — удаление всё равно
// отказывает (иначе уперлись бы в RESTRICT и отдали 500).
func TestCatalogService_DeleteKeepsHistory(t *testing.T) {
	e := setup(t)
	item := e.seedItem(t, 5)
	actx := adminCtx()
	sctx := studentCtx(uuid.New())

	req, err := e.rental.CreateRequest(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if err := e.rental.ApproveRequest(actx, req.ID); err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	ret, err := e.returns.CreateReturn(sctx, []service.LineItemInput{{ItemID: item.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if err := e.returns.ApproveReturn(actx, ret.ID); err != nil {
		t.Fatalf("ApproveReturn: %v", err)
	}

	if st := e.stock(t, item.ID); st.Reserved != 0 {
		t.Fatalf("reserved after full return: %d", st.Reserved)
	}
	if _, err := e.catalog.DeleteItem(actx, item.ID); !errors.Is(err, service.ErrCannotDeleteReferencedItem) {
		t.Fatalf("DeleteItem with history: %v", err)
	}

	// позиция, которой никто не касался, удаляется
	fresh := e.seedItem(t, 1)
	ok, err := e.catalog.DeleteItem(actx, fresh.ID)
	if err != nil || !ok {
		t.Fatalf("DeleteItem fresh: ok=%v err=%v", ok, err)
	}
}
