package service

import (
	"context"
	"time"

	"tyrehub/internal/models"
)

// StockItem is a tyre with its derived threshold status.
type StockItem struct {
	TyreID        uint               `json:"tyre_id"`
	Name          string             `json:"name"`
	BrandName     string             `json:"brand_name"`
	Model         string             `json:"model"`
	Size          string             `json:"size"`
	Stock         int                `json:"stock"`
	MinStockLevel int                `json:"min_stock_level"`
	Status        models.StockStatus `json:"status"`
	LastUpdate    time.Time          `json:"last_update"`
}

// StockPolicy controls the boundary between Low and Critical. Critical means
// stock dropped below min_stock_level / CriticalDivisor.
type StockPolicy struct {
	CriticalDivisor int
}

func DefaultStockPolicy() StockPolicy { return StockPolicy{CriticalDivisor: 2} }

type InventoryService interface {
	Classify(stock, minLevel int) models.StockStatus
	ListStock(ctx context.Context) ([]StockItem, error)
	LowStock(ctx context.Context) ([]StockItem, error)
	GetStock(ctx context.Context, tyreID uint) (*StockItem, error)
	AdjustStock(ctx context.Context, tyreID uint, stock int) (*StockItem, error)

	// Reserve atomically decrements stock for an order line. It fails with
	// ErrInsufficientStock rather than ever driving stock negative.
	Reserve(ctx context.Context, tyreID uint, qty int) error
	// Release returns previously reserved units to stock.
	Release(ctx context.Context, tyreID uint, qty int) error

	// TyresBySize lists SKUs matching an exact size string, optionally only
	// those with units on hand.
	TyresBySize(ctx context.Context, size string, inStockOnly bool) ([]StockItem, error)
}
