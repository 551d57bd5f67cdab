package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"
	"tyrehub/internal/service"
	"tyrehub/internal/testdb"

	"go.uber.org/zap"
)

func newOrderStack(t *testing.T, opts service.OrderOptions) (service.OrderService, service.CatalogService, *repository.Repository) {
	t.Helper()
	db := testdb.Open(t)
	repo := repository.New(db)
	log := zap.NewNop()
	inventory := service.NewInventoryService(repo, service.DefaultStockPolicy(), log)
	orders := service.NewOrderService(repo, inventory, opts, log)
	catalog := service.NewCatalogService(repo, log)
	return orders, catalog, repo
}

func seedCatalogTyre(t *testing.T, catalog service.CatalogService, brandName, model, size string, price float64, stock int) *repository.TyreRow {
	t.Helper()
	ctx := context.Background()
	b, err := catalog.CreateTyreBrand(ctx, service.TyreBrandInput{Name: brandName, Country: "Japan"})
	if err != nil {
		t.Fatalf("create brand failed: %v", err)
	}
	row, err := catalog.CreateTyre(ctx, service.TyreInput{
		BrandID: b.ID, Model: model, Size: size, Type: "All-Season", Price: price, Stock: stock,
	})
	if err != nil {
		t.Fatalf("create tyre failed: %v", err)
	}
	return row
}

func TestCreateOrderSnapshotsCatalog(t *testing.T) {
	orders, catalog, repo := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Bridgestone", "Turanza T005", "225/45R17", 165.99, 100)

	order, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Alex Chen",
		Items:        []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if order.Status != models.OrderStatusPending {
		t.Fatalf("expected Pending, got %s", order.Status)
	}
	if order.TotalAmount != 165.99*4 {
		t.Fatalf("expected total %.2f, got %.2f", 165.99*4, order.TotalAmount)
	}
	if service.OrderCode(order.ID) != "MTX-00001" {
		t.Fatalf("unexpected order code %s", service.OrderCode(order.ID))
	}

	left, _ := repo.Tyres.GetByID(ctx, tyre.ID)
	if left.Stock != 96 {
		t.Fatalf("expected stock 96 after reservation, got %d", left.Stock)
	}

	// a later price change must not alter the stored snapshot
	newPrice := 999.99
	if _, err := catalog.UpdateTyre(ctx, tyre.ID, service.TyrePatch{Price: &newPrice}); err != nil {
		t.Fatalf("price update failed: %v", err)
	}
	got, err := orders.GetOrder(ctx, order.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if got.Items[0].UnitPrice != 165.99 {
		t.Fatalf("snapshot price changed: %v", got.Items[0].UnitPrice)
	}
	if got.TotalAmount != 165.99*4 {
		t.Fatalf("snapshot total changed: %v", got.TotalAmount)
	}
}

func TestCreateOrderInsufficientStockRollsBack(t *testing.T) {
	orders, catalog, repo := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	plenty := seedCatalogTyre(t, catalog, "Yokohama", "BluEarth GT", "215/55R17", 139.99, 100)
	scarce := seedCatalogTyre(t, catalog, "Kumho", "Ecsta PS91", "245/40R18", 169.99, 3)

	_, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Sam Ortiz",
		Items: []service.OrderItemInput{
			{TyreID: plenty.ID, Quantity: 4},
			{TyreID: scarce.ID, Quantity: 5},
		},
	})
	if !errors.Is(err, service.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// the reservation for the first line must have been released
	p, _ := repo.Tyres.GetByID(ctx, plenty.ID)
	if p.Stock != 100 {
		t.Fatalf("expected stock 100 after rollback, got %d", p.Stock)
	}
	s, _ := repo.Tyres.GetByID(ctx, scarce.ID)
	if s.Stock != 3 {
		t.Fatalf("expected scarce stock untouched, got %d", s.Stock)
	}

	count, _ := repo.Orders.Count(ctx)
	if count != 0 {
		t.Fatalf("expected no orders persisted, got %d", count)
	}
}

// cancelAfterFirstReserve cancels the request context once the first
// reservation lands, the way a client disconnect mid-order would.
type cancelAfterFirstReserve struct {
	inner  service.StockReserver
	cancel context.CancelFunc
	once   sync.Once
}

func (r *cancelAfterFirstReserve) Reserve(ctx context.Context, tyreID uint, qty int) error {
	err := r.inner.Reserve(ctx, tyreID, qty)
	if err == nil {
		r.once.Do(r.cancel)
	}
	return err
}

func (r *cancelAfterFirstReserve) Release(ctx context.Context, tyreID uint, qty int) error {
	return r.inner.Release(ctx, tyreID, qty)
}

func TestCreateOrderCancelledContextReleasesReservations(t *testing.T) {
	db := testdb.Open(t)
	repo := repository.New(db)
	log := zap.NewNop()
	inventory := service.NewInventoryService(repo, service.DefaultStockPolicy(), log)
	catalog := service.NewCatalogService(repo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reserver := &cancelAfterFirstReserve{inner: inventory, cancel: cancel}
	orders := service.NewOrderService(repo, reserver, service.OrderOptions{}, log)

	first := seedCatalogTyre(t, catalog, "Michelin", "CrossClimate 2", "225/65R17", 179.99, 10)
	second := seedCatalogTyre(t, catalog, "Dunlop", "Grandtrek PT3", "235/60R18", 155.99, 10)

	_, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Lee Okafor",
		Items: []service.OrderItemInput{
			{TyreID: first.ID, Quantity: 4},
			{TyreID: second.ID, Quantity: 4},
		},
	})
	if err == nil {
		t.Fatal("expected create to fail after context cancellation")
	}

	// the first line's reservation must be released even though the
	// request context is already cancelled
	got, getErr := repo.Tyres.GetByID(context.Background(), first.ID)
	if getErr != nil {
		t.Fatalf("get tyre failed: %v", getErr)
	}
	if got.Stock != 10 {
		t.Fatalf("expected stock 10 after failed order, got %d", got.Stock)
	}

	count, _ := repo.Orders.Count(context.Background())
	if count != 0 {
		t.Fatalf("expected no orders persisted, got %d", count)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	orders, catalog, _ := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Continental", "EcoContact 6", "205/55R16", 129.99, 50)

	cases := []service.OrderInput{
		{CustomerName: "", Items: []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 1}}},
		{CustomerName: "A", Items: nil},
		{CustomerName: "A", Items: []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 0}}},
		{CustomerName: "A", Items: []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 1}, {TyreID: tyre.ID, Quantity: 2}}},
	}
	for i, in := range cases {
		if _, err := orders.CreateOrder(ctx, in); !errors.Is(err, service.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}

	if _, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "A",
		Items:        []service.OrderItemInput{{TyreID: 9999, Quantity: 1}},
	}); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found for missing tyre, got %v", err)
	}
}

func TestSetStatusTransitions(t *testing.T) {
	orders, catalog, _ := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Goodyear", "Assurance MaxLife", "225/60R17", 145.99, 50)
	order, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Riley Kim",
		Items:        []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := orders.SetStatus(ctx, order.ID, "Teleported"); !errors.Is(err, service.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	got, err := orders.SetStatus(ctx, order.ID, models.OrderStatusConfirmed)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if got.Status != models.OrderStatusConfirmed {
		t.Fatalf("expected Confirmed, got %s", got.Status)
	}

	if _, err := orders.SetStatus(ctx, order.ID, models.OrderStatusCompleted); err != nil {
		t.Fatalf("set status failed: %v", err)
	}

	// terminal states accept no transition, not even to themselves
	if _, err := orders.SetStatus(ctx, order.ID, models.OrderStatusShipped); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := orders.SetStatus(ctx, order.ID, models.OrderStatusCompleted); !errors.Is(err, service.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition for self-transition, got %v", err)
	}
}

func TestCancelWithRestock(t *testing.T) {
	orders, catalog, repo := newOrderStack(t, service.OrderOptions{RestockOnCancel: true})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Pirelli", "Cinturato P7", "225/55R17", 175.99, 20)
	order, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Dana Wolfe",
		Items:        []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 6}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := orders.SetStatus(ctx, order.ID, models.OrderStatusCancelled); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	got, _ := repo.Tyres.GetByID(ctx, tyre.ID)
	if got.Stock != 20 {
		t.Fatalf("expected stock restored to 20, got %d", got.Stock)
	}
}

func TestDeleteOrderRemovesItems(t *testing.T) {
	orders, catalog, repo := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Nokian", "Hakkapeliitta R5", "205/55R16", 159.99, 30)
	order, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Jo March",
		Items:        []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if err := orders.DeleteOrder(ctx, order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := orders.GetOrder(ctx, order.ID); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	items, err := repo.Items.GetByOrderID(ctx, order.ID)
	if err != nil {
		t.Fatalf("list items failed: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no items left, got %d", len(items))
	}
}

func TestDashboardStats(t *testing.T) {
	orders, catalog, repo := newOrderStack(t, service.OrderOptions{})
	ctx := context.Background()

	tyre := seedCatalogTyre(t, catalog, "Michelin", "Primacy 4", "205/55R16", 159.99, 200)

	brand := models.CarBrand{Name: "Toyota", Country: "Japan"}
	if err := repo.CarBrands.Create(ctx, &brand); err != nil {
		t.Fatalf("create car brand failed: %v", err)
	}
	model := models.CarModel{BrandID: brand.ID, Name: "Corolla", Year: 2024, TyreSizes: []string{"205/55R16"}}
	if err := repo.CarModels.Create(ctx, &model); err != nil {
		t.Fatalf("create car model failed: %v", err)
	}

	if _, err := orders.CreateOrder(ctx, service.OrderInput{
		CustomerName: "Ash Gray",
		Items:        []service.OrderItemInput{{TyreID: tyre.ID, Quantity: 4}},
	}); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	stats, err := orders.Stats(ctx)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.TotalOrders != 1 {
		t.Fatalf("expected 1 order, got %d", stats.TotalOrders)
	}
	if stats.TotalRevenue != 159.99*4 {
		t.Fatalf("expected revenue %.2f, got %.2f", 159.99*4, stats.TotalRevenue)
	}
	if stats.TyresInStock != 196 {
		t.Fatalf("expected 196 tyres in stock, got %d", stats.TyresInStock)
	}
	if stats.CarModels != 1 {
		t.Fatalf("expected 1 car model, got %d", stats.CarModels)
	}
}
