package service

import (
	"context"
	"strings"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"

	"go.uber.org/zap"
)

// OrderOptions tunes order lifecycle behaviour.
type OrderOptions struct {
	// RestockOnCancel returns reserved units to stock when an order moves to
	// Cancelled. Off by default: cancelled stock is written off until someone
	// counts it back in.
	RestockOnCancel bool
}

type orderService struct {
	repo  *repository.Repository
	stock StockReserver
	opts  OrderOptions
	log   *zap.Logger
	now   func() time.Time
}

func NewOrderService(repo *repository.Repository, stock StockReserver, opts OrderOptions, log *zap.Logger) OrderService {
	return &orderService{repo: repo, stock: stock, opts: opts, log: log, now: time.Now}
}

func (s *orderService) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	if in.CustomerName == "" {
		return nil, validationf("customer name is required")
	}
	if len(in.Items) == 0 {
		return nil, validationf("order must contain at least one item")
	}
	seen := map[uint]struct{}{}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, validationf("quantity must be positive")
		}
		if _, dup := seen[it.TyreID]; dup {
			return nil, validationf("duplicate tyre %d in order", it.TyreID)
		}
		seen[it.TyreID] = struct{}{}
	}

	// Reserve stock per line before touching the orders table. On any
	// failure the already-reserved lines are released, so a rejected order
	// leaves stock exactly where it was.
	type reserved struct {
		tyreID uint
		qty    int
	}
	var held []reserved
	rollback := func() {
		// The failure being compensated may be the caller's context getting
		// cancelled; run the releases detached so reserved units never leak.
		rctx := context.WithoutCancel(ctx)
		for _, r := range held {
			if err := s.stock.Release(rctx, r.tyreID, r.qty); err != nil {
				s.log.Error("release after failed order",
					zap.Uint("tyre_id", r.tyreID),
					zap.Int("quantity", r.qty),
					zap.Error(err),
				)
			}
		}
	}

	var (
		items []models.OrderItem
		total float64
	)
	for _, it := range in.Items {
		row, err := s.repo.Tyres.GetRowByID(ctx, it.TyreID)
		if err != nil {
			rollback()
			return nil, err
		}
		if row == nil {
			rollback()
			return nil, ErrTyreNotFound
		}
		if err := s.stock.Reserve(ctx, it.TyreID, it.Quantity); err != nil {
			rollback()
			return nil, err
		}
		held = append(held, reserved{tyreID: it.TyreID, qty: it.Quantity})
		items = append(items, models.OrderItem{
			TyreID:    row.ID,
			TyreName:  TyreDisplayName(row.BrandName, row.Model, row.Size),
			Quantity:  it.Quantity,
			UnitPrice: row.Price,
		})
		total += row.Price * float64(it.Quantity)
	}

	order := &models.Order{
		CustomerName:    in.CustomerName,
		Status:          models.OrderStatusPending,
		TotalAmount:     total,
		ShippingAddress: in.ShippingAddress,
		PaymentMethod:   in.PaymentMethod,
	}
	err := s.repo.WithTx(func(tx *repository.Repository) error {
		if err := tx.Orders.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		return tx.Items.BulkCreate(ctx, items)
	})
	if err != nil {
		rollback()
		return nil, err
	}
	order.Items = items

	s.log.Info("order created",
		zap.Uint("id", order.ID),
		zap.String("code", OrderCode(order.ID)),
		zap.Int("items", len(items)),
		zap.Float64("total", total),
	)
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, err := s.repo.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	return s.repo.Orders.List(ctx)
}

func (s *orderService) SetStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validationf("unknown status %q", status)
	}
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Status.Terminal() {
		return nil, ErrInvalidTransition
	}
	if status == o.Status {
		return o, nil
	}
	if err := s.repo.Orders.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	if status == models.OrderStatusCancelled && s.opts.RestockOnCancel {
		rctx := context.WithoutCancel(ctx)
		for _, it := range o.Items {
			if err := s.stock.Release(rctx, it.TyreID, it.Quantity); err != nil {
				s.log.Error("restock on cancel",
					zap.Uint("order_id", id),
					zap.Uint("tyre_id", it.TyreID),
					zap.Error(err),
				)
			}
		}
	}
	s.log.Info("order status changed",
		zap.Uint("id", id),
		zap.String("from", string(o.Status)),
		zap.String("to", string(status)),
	)
	return s.GetOrder(ctx, id)
}

func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	o, err := s.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if _, err := tx.Items.DeleteByOrderID(ctx, o.ID); err != nil {
			return err
		}
		_, err := tx.Orders.Delete(ctx, o.ID)
		return err
	})
}

func (s *orderService) Stats(ctx context.Context) (*DashboardStats, error) {
	orders, err := s.repo.Orders.Count(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.repo.Orders.SumTotals(ctx)
	if err != nil {
		return nil, err
	}
	stock, err := s.repo.Tyres.SumStock(ctx)
	if err != nil {
		return nil, err
	}
	carModels, err := s.repo.CarModels.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		TotalOrders:  orders,
		TotalRevenue: revenue,
		TyresInStock: stock,
		CarModels:    carModels,
	}, nil
}
