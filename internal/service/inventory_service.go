package service

import (
	"context"
	"fmt"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"

	"go.uber.org/zap"
)

type inventoryService struct {
	repo   *repository.Repository
	policy StockPolicy
	log    *zap.Logger
	now    func() time.Time
}

func NewInventoryService(repo *repository.Repository, policy StockPolicy, log *zap.Logger) InventoryService {
	if policy.CriticalDivisor <= 0 {
		policy = DefaultStockPolicy()
	}
	return &inventoryService{repo: repo, policy: policy, log: log, now: time.Now}
}

// Classify derives the threshold status. The boundaries are strict: a tyre
// sitting exactly at min_stock_level is OK, one exactly at the critical bound
// is Low.
func (s *inventoryService) Classify(stock, minLevel int) models.StockStatus {
	critical := minLevel / s.policy.CriticalDivisor
	switch {
	case stock < critical:
		return models.StockCritical
	case stock < minLevel:
		return models.StockLow
	default:
		return models.StockOK
	}
}

func (s *inventoryService) item(row repository.TyreRow) StockItem {
	return StockItem{
		TyreID:        row.ID,
		Name:          TyreDisplayName(row.BrandName, row.Model, row.Size),
		BrandName:     row.BrandName,
		Model:         row.Model,
		Size:          row.Size,
		Stock:         row.Stock,
		MinStockLevel: row.MinStockLevel,
		Status:        s.Classify(row.Stock, row.MinStockLevel),
		LastUpdate:    row.StockUpdatedAt,
	}
}

func (s *inventoryService) ListStock(ctx context.Context) ([]StockItem, error) {
	rows, err := s.repo.Tyres.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]StockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.item(row))
	}
	return items, nil
}

func (s *inventoryService) LowStock(ctx context.Context) ([]StockItem, error) {
	all, err := s.ListStock(ctx)
	if err != nil {
		return nil, err
	}
	flagged := make([]StockItem, 0)
	for _, it := range all {
		if it.Status != models.StockOK {
			flagged = append(flagged, it)
		}
	}
	return flagged, nil
}

func (s *inventoryService) GetStock(ctx context.Context, tyreID uint) (*StockItem, error) {
	row, err := s.repo.Tyres.GetRowByID(ctx, tyreID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTyreNotFound
	}
	it := s.item(*row)
	return &it, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, tyreID uint, stock int) (*StockItem, error) {
	if stock < 0 {
		return nil, validationf("stock must not be negative")
	}
	ok, err := s.repo.Tyres.SetStock(ctx, tyreID, stock, s.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTyreNotFound
	}
	it, err := s.GetStock(ctx, tyreID)
	if err != nil {
		return nil, err
	}
	s.log.Info("stock adjusted",
		zap.Uint("tyre_id", tyreID),
		zap.Int("stock", stock),
		zap.String("status", string(it.Status)),
	)
	return it, nil
}

func (s *inventoryService) Reserve(ctx context.Context, tyreID uint, qty int) error {
	if qty <= 0 {
		return validationf("quantity must be positive")
	}
	ok, err := s.repo.Tyres.TryReserve(ctx, tyreID, qty, s.now().UTC())
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	// The guarded UPDATE matched nothing: either the tyre is gone or the
	// stock guard failed. Distinguish for the caller.
	t, err := s.repo.Tyres.GetByID(ctx, tyreID)
	if err != nil {
		return err
	}
	if t == nil {
		return ErrTyreNotFound
	}
	return fmt.Errorf("%w: tyre %d has %d in stock, want %d", ErrInsufficientStock, tyreID, t.Stock, qty)
}

func (s *inventoryService) Release(ctx context.Context, tyreID uint, qty int) error {
	if qty <= 0 {
		return validationf("quantity must be positive")
	}
	ok, err := s.repo.Tyres.Release(ctx, tyreID, qty, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrTyreNotFound
	}
	return nil
}

func (s *inventoryService) TyresBySize(ctx context.Context, size string, inStockOnly bool) ([]StockItem, error) {
	rows, err := s.repo.Tyres.ListBySize(ctx, size, inStockOnly)
	if err != nil {
		return nil, err
	}
	items := make([]StockItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, s.item(row))
	}
	return items, nil
}

// TyreDisplayName is the customer-facing SKU name used for order snapshots
// and agent answers.
func TyreDisplayName(brand, model, size string) string {
	return fmt.Sprintf("%s %s %s", brand, model, size)
}
