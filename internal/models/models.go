package models

import "time"

type CarBrand struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Country string `gorm:"type:text;not null" json:"country"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Models []CarModel `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CarBrand) TableName() string { return "car_brands" }

type CarModel struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	BrandID uint   `gorm:"not null;index" json:"brand_id"`
	Name    string `gorm:"type:text;not null" json:"name"`
	Year    int    `gorm:"not null" json:"year"`
	// Display order matters, so this is a sequence rather than a set;
	// duplicates are rejected at the service boundary.
	TyreSizes []string `gorm:"serializer:json;type:text" json:"tyre_sizes"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (CarModel) TableName() string { return "car_models" }

type TyreBrand struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Country string `gorm:"type:text;not null" json:"country"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Tyres []Tyre `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE" json:"-"`
}

func (TyreBrand) TableName() string { return "tyre_brands" }

// Tyre is a sellable SKU: brand + model + size + type.
type Tyre struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	BrandID       uint    `gorm:"not null;index" json:"brand_id"`
	Model         string  `gorm:"type:text;not null" json:"model"`
	Size          string  `gorm:"type:text;not null" json:"size"`
	Type          string  `gorm:"type:text;not null" json:"type"`
	Price         float64 `gorm:"not null;default:0" json:"price"`
	Cost          float64 `gorm:"not null;default:0" json:"cost"`
	Stock         int     `gorm:"not null;default:0" json:"stock"`
	MinStockLevel int     `gorm:"not null;default:50" json:"min_stock_level"`

	// Timestamp of the last stock-level write only (adjust/reserve/release),
	// so catalog edits never masquerade as stock movement.
	StockUpdatedAt time.Time `gorm:"not null" json:"stock_updated_at"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Tyre) TableName() string { return "tyres" }

// StockStatus is derived from (stock, min_stock_level) on every read and is
// never persisted.
type StockStatus string

const (
	StockOK       StockStatus = "OK"
	StockLow      StockStatus = "Low"
	StockCritical StockStatus = "Critical"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusConfirmed  OrderStatus = "Confirmed"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusReady      OrderStatus = "Ready"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// Valid reports whether s is one of the enumerated statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusReady, OrderStatusShipped, OrderStatusDelivered,
		OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

type Order struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	CustomerName    string      `gorm:"type:text;not null" json:"customer_name"`
	Status          OrderStatus `gorm:"type:text;not null;default:'Pending';index" json:"status"`
	TotalAmount     float64     `gorm:"not null;default:0" json:"total_amount"`
	ShippingAddress *string     `gorm:"type:text" json:"shipping_address,omitempty"`
	PaymentMethod   *string     `gorm:"type:text" json:"payment_method,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string { return "orders" }

// OrderItem snapshots tyre name and unit price at creation time. Historical
// orders keep their value when the catalog changes later.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"-"`
	TyreID    uint    `gorm:"not null" json:"tyre_id"`
	TyreName  string  `gorm:"type:text;not null" json:"tyre_name"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

type ChatSender string

const (
	SenderUser  ChatSender = "user"
	SenderAgent ChatSender = "agent"
)

type ChatSession struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Title string `gorm:"type:text;not null" json:"title"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`

	Messages []ChatMessage `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ChatSession) TableName() string { return "chat_sessions" }

// ChatMessage rows form an append-only log per session; creation order is the
// ID order and messages are never edited after write.
type ChatMessage struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	SessionID uint       `gorm:"not null;index" json:"session_id"`
	Sender    ChatSender `gorm:"type:text;not null" json:"sender"`
	Text      string     `gorm:"type:text;not null" json:"text"`

	CreatedAt time.Time `gorm:"not null" json:"timestamp"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
