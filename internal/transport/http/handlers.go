// Package http exposes the back-office API over REST.
package http

import (
	"errors"
	"net/http"
	"strconv"

	"tyrehub/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	Catalog   service.CatalogService
	Inventory service.InventoryService
	Orders    service.OrderService
	Chat      service.ChatService
	Log       *zap.Logger
}

func NewRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(h.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	cb := api.Group("/car-brands")
	cb.GET("", h.listCarBrands)
	cb.POST("", h.createCarBrand)
	cb.GET("/:id", h.getCarBrand)
	cb.PATCH("/:id", h.updateCarBrand)
	cb.DELETE("/:id", h.deleteCarBrand)

	cm := api.Group("/car-models")
	cm.GET("", h.listCarModels)
	cm.POST("", h.createCarModel)
	cm.GET("/:id", h.getCarModel)
	cm.PATCH("/:id", h.updateCarModel)
	cm.DELETE("/:id", h.deleteCarModel)

	tb := api.Group("/tyre-brands")
	tb.GET("", h.listTyreBrands)
	tb.POST("", h.createTyreBrand)
	tb.GET("/:id", h.getTyreBrand)
	tb.PATCH("/:id", h.updateTyreBrand)
	tb.DELETE("/:id", h.deleteTyreBrand)

	ty := api.Group("/tyres")
	ty.GET("", h.listTyres)
	ty.POST("", h.createTyre)
	ty.GET("/:id", h.getTyre)
	ty.PATCH("/:id", h.updateTyre)
	ty.DELETE("/:id", h.deleteTyre)

	inv := api.Group("/inventory")
	inv.GET("", h.listStock)
	inv.GET("/low-stock", h.lowStock)
	inv.GET("/:id", h.getStock)
	inv.PUT("/:id", h.adjustStock)

	ord := api.Group("/orders")
	ord.GET("", h.listOrders)
	ord.POST("", h.createOrder)
	ord.GET("/:id", h.getOrder)
	ord.PATCH("/:id/status", h.setOrderStatus)
	ord.DELETE("/:id", h.deleteOrder)

	api.GET("/dashboard/stats", h.dashboardStats)

	chat := api.Group("/chat")
	chat.POST("", h.sendChatMessage)
	chat.GET("/sessions", h.listChatSessions)
	chat.GET("/sessions/:id", h.getChatSession)

	return r
}

// respondError maps the service error taxonomy onto HTTP statuses. Unknown
// errors are logged and hidden behind a generic 500.
func (h *Handlers) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.Log.Error("internal error",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
