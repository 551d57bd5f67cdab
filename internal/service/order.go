package service

import (
	"context"
	"fmt"

	"tyrehub/internal/models"
)

type OrderItemInput struct {
	TyreID   uint
	Quantity int
}

type OrderInput struct {
	CustomerName    string
	ShippingAddress *string
	PaymentMethod   *string
	Items           []OrderItemInput
}

// DashboardStats is the landing-page summary.
type DashboardStats struct {
	TotalOrders  int64   `json:"total_orders"`
	TotalRevenue float64 `json:"total_revenue"`
	TyresInStock int64   `json:"tyres_in_stock"`
	CarModels    int64   `json:"car_models"`
}

// StockReserver is the slice of the inventory engine orders depend on.
type StockReserver interface {
	Reserve(ctx context.Context, tyreID uint, qty int) error
	Release(ctx context.Context, tyreID uint, qty int) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	SetStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	Stats(ctx context.Context) (*DashboardStats, error)
}

// OrderCode formats the customer-facing reference for an order ID.
func OrderCode(id uint) string {
	return fmt.Sprintf("MTX-%05d", id)
}
