package http

import (
	"net/http"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/service"

	"github.com/gin-gonic/gin"
)

type orderResponse struct {
	ID              uint               `json:"id"`
	OrderCode       string             `json:"order_code"`
	CustomerName    string             `json:"customer_name"`
	Status          models.OrderStatus `json:"status"`
	TotalAmount     float64            `json:"total_amount"`
	ShippingAddress *string            `json:"shipping_address,omitempty"`
	PaymentMethod   *string            `json:"payment_method,omitempty"`
	ItemsCount      int                `json:"items_count"`
	Items           []models.OrderItem `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

func toOrderResponse(o *models.Order) orderResponse {
	items := o.Items
	if items == nil {
		items = []models.OrderItem{}
	}
	return orderResponse{
		ID:              o.ID,
		OrderCode:       service.OrderCode(o.ID),
		CustomerName:    o.CustomerName,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		ItemsCount:      len(items),
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func (h *Handlers) listOrders(c *gin.Context) {
	orders, err := h.Orders.ListOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) createOrder(c *gin.Context) {
	var req struct {
		CustomerName    string  `json:"customer_name"`
		ShippingAddress *string `json:"shipping_address"`
		PaymentMethod   *string `json:"payment_method"`
		Items           []struct {
			TyreID   uint `json:"tyre_id"`
			Quantity int  `json:"quantity"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	in := service.OrderInput{
		CustomerName:    req.CustomerName,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{TyreID: it.TyreID, Quantity: it.Quantity})
	}
	order, err := h.Orders.CreateOrder(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *Handlers) getOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.Orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handlers) setOrderStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	order, err := h.Orders.SetStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *Handlers) deleteOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handlers) dashboardStats(c *gin.Context) {
	stats, err := h.Orders.Stats(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
