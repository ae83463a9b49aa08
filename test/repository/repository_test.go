package repository_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/varunhp06/campus-connect-sub000/internal/migrate"
	"github.com/varunhp06/campus-connect-sub000/internal/models"
	"github.com/varunhp06/campus-connect-sub000/internal/repository"
	"github.com/varunhp06/campus-connect-sub000/pkg/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func timeNow() time.Time { return time.Now().UTC() }

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateCampusDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedItem создаёт позицию каталога с инвентарной строкой и нужным остатком.
func seedItem(t *testing.T, db *gorm.DB, total int32) *models.CatalogItem {
	t.Helper()
	ctx := context.Background()
	catalog := repository.NewCatalogRepo(db)
	inv := repository.NewInventoryRepo(db)

	item := &models.CatalogItem{ShopID: uuid.New(), Name: "badminton racket", PriceCents: 1500, IsActive: true}
	if err := catalog.Create(ctx, item); err != nil {
		t.Fatalf("Create item: %v", err)
	}
	if err := catalog.EnsureInventoryRow(ctx, item.ID); err != nil {
		t.Fatalf("EnsureInventoryRow: %v", err)
	}
	if total > 0 {
		if ok, err := inv.SetTotalStock(ctx, item.ID, total); err != nil || !ok {
			t.Fatalf("SetTotalStock: ok=%v err=%v", ok, err)
		}
	}
	return item
}

func TestCatalogRepo_CRUD_And_List(t *testing.T) {
	db := setupDB(t)
	repo := repository.NewCatalogRepo(db)
	ctx := context.Background()

	shopID := uuid.New()
	item := &models.CatalogItem{ShopID: shopID, Name: "chess set", Description: "wooden", PriceCents: 500, IsActive: true}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.EnsureInventoryRow(ctx, item.ID); err != nil {
		t.Fatalf("EnsureInventoryRow: %v", err)
	}
	// повторный вызов должен быть no-op
	if err := repo.EnsureInventoryRow(ctx, item.ID); err != nil {
		t.Fatalf("EnsureInventoryRow repeat: %v", err)
	}

	got, err := repo.GetByID(ctx, item.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Name != "chess set" || got.ShopID != shopID {
		t.Fatalf("GetByID mismatch: %+v", got)
	}

	if miss, err := repo.GetByID(ctx, uuid.New()); err != nil || miss != nil {
		t.Fatalf("GetByID miss: expected nil,nil got %v %v", miss, err)
	}

	if err := repo.UpdateFields(ctx, item.ID, map[string]any{"price_cents": 700, "is_active": false}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got2, _ := repo.GetByID(ctx, item.ID)
	if got2.PriceCents != 700 || got2.IsActive {
		t.Fatalf("UpdateFields mismatch: %+v", got2)
	}

	// ещё пара позиций того же магазина для фильтров
	for _, name := range []string{"table tennis bat", "table tennis ball"} {
		it := &models.CatalogItem{ShopID: shopID, Name: name, IsActive: true}
		if err := repo.Create(ctx, it); err != nil {
			t.Fatalf("Create extra: %v", err)
		}
	}

	onlyActive := true
	list, total, err := repo.List(ctx, repository.CatalogListFilter{ShopID: &shopID, OnlyActive: &onlyActive, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("List active: total=%d len=%d", total, len(list))
	}

	list2, _, err := repo.List(ctx, repository.CatalogListFilter{ShopID: &shopID, Query: "tennis", Limit: 10})
	if err != nil {
		t.Fatalf("List query: %v", err)
	}
	if len(list2) != 2 {
		t.Fatalf("List query: expected 2 got %d", len(list2))
	}

	if ok, err := repo.Delete(ctx, item.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if ok, _ := repo.Delete(ctx, item.ID); ok {
		t.Fatalf("Delete twice: expected false")
	}
}

func TestInventoryRepo_ConditionalOps(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	ctx := context.Background()

	item := seedItem(t, db, 5)

	// резерв в пределах остатка
	if ok, err := inv.TryReserve(ctx, item.ID, 3); err != nil || !ok {
		t.Fatalf("TryReserve 3: ok=%v err=%v", ok, err)
	}
	// ровно остаток — ок
	if ok, err := inv.TryReserve(ctx, item.ID, 2); err != nil || !ok {
		t.Fatalf("TryReserve 2: ok=%v err=%v", ok, err)
	}
	// сверх остатка — отказ без изменений
	if ok, err := inv.TryReserve(ctx, item.ID, 1); err != nil || ok {
		t.Fatalf("TryReserve over: ok=%v err=%v", ok, err)
	}
	got, _ := inv.Get(ctx, item.ID)
	if got.TotalStock != 5 || got.Reserved != 5 || got.Available() != 0 {
		t.Fatalf("after reserves: %+v", got)
	}

	// total нельзя опустить ниже резерва
	if ok, err := inv.SetTotalStock(ctx, item.ID, 4); err != nil || ok {
		t.Fatalf("SetTotalStock below reserved: ok=%v err=%v", ok, err)
	}
	if ok, err := inv.AdjustTotalStock(ctx, item.ID, -1); err != nil || ok {
		t.Fatalf("AdjustTotalStock below reserved: ok=%v err=%v", ok, err)
	}
	if ok, err := inv.AdjustTotalStock(ctx, item.ID, 2); err != nil || !ok {
		t.Fatalf("AdjustTotalStock +2: ok=%v err=%v", ok, err)
	}

	// выдача списывает и фонд, и резерв
	if ok, err := inv.Consume(ctx, item.ID, 2); err != nil || !ok {
		t.Fatalf("Consume: ok=%v err=%v", ok, err)
	}
	got2, _ := inv.Get(ctx, item.ID)
	if got2.TotalStock != 5 || got2.Reserved != 3 {
		t.Fatalf("after consume: %+v", got2)
	}

	// освобождение с полом на нуле
	if ok, err := inv.Release(ctx, item.ID, 100); err != nil || !ok {
		t.Fatalf("Release: ok=%v err=%v", ok, err)
	}
	got3, _ := inv.Get(ctx, item.ID)
	if got3.Reserved != 0 {
		t.Fatalf("Release floor: reserved=%d", got3.Reserved)
	}

	if miss, err := inv.Get(ctx, uuid.New()); err != nil || miss != nil {
		t.Fatalf("Get miss: %v %v", miss, err)
	}
}

// Две конкурирующие модерации последней единицы: выиграть должна ровно одна.
func TestInventoryRepo_ConcurrentReserve_NoOversell(t *testing.T) {
	db := setupDB(t)
	inv := repository.NewInventoryRepo(db)
	ctx := context.Background()

	item := seedItem(t, db, 3)

	const workers = 10
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := inv.TryReserve(ctx, item.ID, 1)
			if err != nil {
				t.Errorf("TryReserve: %v", err)
				return
			}
			wins <- ok
		}()
	}
	wg.Wait()
	close(wins)

	succeeded := 0
	for ok := range wins {
		if ok {
			succeeded++
		}
	}
	if succeeded != 3 {
		t.Fatalf("expected exactly 3 winners, got %d", succeeded)
	}
	got, _ := inv.Get(ctx, item.ID)
	if got.Reserved != 3 || got.TotalStock != 3 {
		t.Fatalf("oversell: %+v", got)
	}
}

func TestRentRequestRepo_StatusTransitions(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	item := seedItem(t, db, 5)
	requester := uuid.New()

	req := &models.RentRequest{
		RequesterID:          requester,
		RequesterDisplayName: "Alex",
		Items: []models.RentRequestItem{
			{ItemID: item.ID, Name: item.Name, Quantity: 2},
		},
	}
	if err := repos.RentRequests.Create(ctx, req); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repos.RentRequests.GetByID(ctx, req.ID)
	if err != nil || got == nil {
		t.Fatalf("GetByID: %v %v", got, err)
	}
	if got.Status != models.RequestStatusPending || len(got.Items) != 1 {
		t.Fatalf("fresh request: %+v", got)
	}

	moderator := uuid.New()
	ok, err := repos.RentRequests.MarkApproved(ctx, req.ID, moderator, timeNow())
	if err != nil || !ok {
		t.Fatalf("MarkApproved: ok=%v err=%v", ok, err)
	}
	// повторная модерация не проходит: статус уже не PENDING
	if ok, _ := repos.RentRequests.MarkApproved(ctx, req.ID, moderator, timeNow()); ok {
		t.Fatalf("MarkApproved twice: expected false")
	}
	if ok, _ := repos.RentRequests.MarkRejected(ctx, req.ID, moderator, timeNow(), nil); ok {
		t.Fatalf("MarkRejected after approve: expected false")
	}

	got2, _ := repos.RentRequests.GetByID(ctx, req.ID)
	if got2.Status != models.RequestStatusApproved || got2.ApprovedBy == nil || *got2.ApprovedBy != moderator {
		t.Fatalf("approved request: %+v", got2)
	}

	list, total, err := repos.RentRequests.List(ctx, repository.RentRequestListFilter{RequesterID: &requester, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("List: total=%d len=%d", total, len(list))
	}
}

func TestHoldingRepo_MergeShrinkDelete(t *testing.T) {
	db := setupDB(t)
	hold := repository.NewHoldingRepo(db)
	ctx := context.Background()

	itemA := seedItem(t, db, 10)
	itemB := seedItem(t, db, 10)
	holder := uuid.New()

	h := &models.Holding{HolderID: holder}
	if err := hold.Create(ctx, h); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := hold.MergeItem(ctx, h.ID, itemA.ID, itemA.Name, 2); err != nil {
		t.Fatalf("MergeItem: %v", err)
	}
	// слияние: вторая аренда той же позиции складывает количества
	if err := hold.MergeItem(ctx, h.ID, itemA.ID, itemA.Name, 3); err != nil {
		t.Fatalf("MergeItem again: %v", err)
	}
	if err := hold.MergeItem(ctx, h.ID, itemB.ID, itemB.Name, 1); err != nil {
		t.Fatalf("MergeItem B: %v", err)
	}

	got, err := hold.GetByHolder(ctx, holder)
	if err != nil || got == nil {
		t.Fatalf("GetByHolder: %v %v", got, err)
	}
	qty := map[uuid.UUID]int32{}
	for _, it := range got.Items {
		qty[it.ItemID] = it.Quantity
	}
	if qty[itemA.ID] != 5 || qty[itemB.ID] != 1 {
		t.Fatalf("merge quantities: %+v", qty)
	}

	// частичный возврат
	if ok, err := hold.DecrementItem(ctx, h.ID, itemA.ID, 2); err != nil || !ok {
		t.Fatalf("DecrementItem partial: ok=%v err=%v", ok, err)
	}
	// полный возврат остатка удаляет строку
	if ok, err := hold.DecrementItem(ctx, h.ID, itemA.ID, 3); err != nil || !ok {
		t.Fatalf("DecrementItem full: ok=%v err=%v", ok, err)
	}
	// больше, чем держится — отказ
	if ok, err := hold.DecrementItem(ctx, h.ID, itemB.ID, 5); err != nil || ok {
		t.Fatalf("DecrementItem over: ok=%v err=%v", ok, err)
	}

	cnt, err := hold.CountItems(ctx, h.ID)
	if err != nil || cnt != 1 {
		t.Fatalf("CountItems: cnt=%d err=%v", cnt, err)
	}

	if ok, err := hold.DecrementItem(ctx, h.ID, itemB.ID, 1); err != nil || !ok {
		t.Fatalf("DecrementItem B: ok=%v err=%v", ok, err)
	}
	cnt2, _ := hold.CountItems(ctx, h.ID)
	if cnt2 != 0 {
		t.Fatalf("CountItems after empty: %d", cnt2)
	}

	if ok, err := hold.Delete(ctx, h.ID); err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if miss, _ := hold.GetByHolder(ctx, holder); miss != nil {
		t.Fatalf("holding should be gone: %+v", miss)
	}
}

func TestFoodOrderRepo_MarkStatus(t *testing.T) {
	db := setupDB(t)
	repos := repository.New(db)
	ctx := context.Background()

	item := seedItem(t, db, 5)
	customer := uuid.New()
	shop := item.ShopID

	ord := &models.FoodOrder{CustomerID: customer, CustomerDisplayName: "Sam", ShopID: shop}
	if err := repos.Orders.Create(ctx, ord); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repos.OrderItems.BulkCreate(ctx, []models.FoodOrderItem{
		{OrderID: ord.ID, ItemID: item.ID, Name: item.Name, Quantity: 2, UnitPriceCents: 1500, LineTotalCents: 3000},
	}); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	if err := repos.Orders.UpdateTotals(ctx, ord.ID, 3000); err != nil {
		t.Fatalf("UpdateTotals: %v", err)
	}

	ok, err := repos.Orders.MarkStatus(ctx, ord.ID, models.OrderStatusPending, models.OrderStatusPreparing, nil)
	if err != nil || !ok {
		t.Fatalf("MarkStatus pending->preparing: ok=%v err=%v", ok, err)
	}
	// переход из уже покинутого статуса не срабатывает
	if ok, _ := repos.Orders.MarkStatus(ctx, ord.ID, models.OrderStatusPending, models.OrderStatusPreparing, nil); ok {
		t.Fatalf("MarkStatus from stale status: expected false")
	}

	reason := "out of rice"
	ok, err = repos.Orders.MarkStatus(ctx, ord.ID, models.OrderStatusPreparing, models.OrderStatusRejected, map[string]any{
		"reject_reason":    &reason,
		"item_unavailable": true,
	})
	if err != nil || !ok {
		t.Fatalf("MarkStatus reject: ok=%v err=%v", ok, err)
	}

	got, _ := repos.Orders.GetByID(ctx, ord.ID)
	if got.Status != models.OrderStatusRejected || got.RejectReason == nil || *got.RejectReason != reason || !got.ItemUnavailable {
		t.Fatalf("rejected order: %+v", got)
	}
	if got.TotalPriceCents != 3000 || len(got.Items) != 1 {
		t.Fatalf("order payload: %+v", got)
	}

	byCustomer, err := repos.Orders.GetByIDForCustomer(ctx, ord.ID, customer)
	if err != nil || byCustomer == nil {
		t.Fatalf("GetByIDForCustomer: %v %v", byCustomer, err)
	}
	if stranger, _ := repos.Orders.GetByIDForCustomer(ctx, ord.ID, uuid.New()); stranger != nil {
		t.Fatalf("GetByIDForCustomer stranger: expected nil")
	}

	list, total, err := repos.Orders.List(ctx, repository.FoodOrderListFilter{ShopID: &shop, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 1 || len(list) != 1 {
		t.Fatalf("List: total=%d len=%d", total, len(list))
	}
}
