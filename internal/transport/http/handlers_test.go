package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tyrehub/internal/repository"
	"tyrehub/internal/service"
	"tyrehub/internal/testdb"
	transport "tyrehub/internal/transport/http"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoAgent struct{}

func (echoAgent) Respond(_ context.Context, message string, _ []service.AgentTurn) (string, error) {
	return "echo: " + message, nil
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	repo := repository.New(db)
	log := zap.NewNop()

	catalog := service.NewCatalogService(repo, log)
	inventory := service.NewInventoryService(repo, service.DefaultStockPolicy(), log)
	orders := service.NewOrderService(repo, inventory, service.OrderOptions{}, log)
	chat := service.NewChatService(repo, echoAgent{}, 5*time.Second, log)

	return transport.NewRouter(&transport.Handlers{
		Catalog:   catalog,
		Inventory: inventory,
		Orders:    orders,
		Chat:      chat,
		Log:       log,
	})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestHealth(t *testing.T) {
	router := setupRouter(t)
	w := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCatalogEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/tyre-brands", gin.H{"name": "Michelin", "country": "France"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand struct {
		ID uint `json:"id"`
	}
	decode(t, w, &brand)

	// duplicate name maps to 409
	w = doJSON(t, router, http.MethodPost, "/api/tyre-brands", gin.H{"name": "michelin", "country": "France"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/tyres", gin.H{
		"brand_id": brand.ID,
		"model":    "Pilot Sport 4",
		"size":     "225/45R17",
		"type":     "Performance",
		"price":    189.99,
		"cost":     95.50,
		"stock":    120,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tyre struct {
		ID            uint    `json:"id"`
		Name          string  `json:"name"`
		BrandName     string  `json:"brand_name"`
		Price         float64 `json:"price"`
		MinStockLevel int     `json:"min_stock_level"`
	}
	decode(t, w, &tyre)
	assert.Equal(t, "Michelin Pilot Sport 4 225/45R17", tyre.Name)
	assert.Equal(t, "Michelin", tyre.BrandName)
	assert.Equal(t, 50, tyre.MinStockLevel)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/tyres/%d", tyre.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/tyres/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/tyres/%d", tyre.ID), gin.H{"price": -5})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// brand with tyres refuses plain delete, cascade succeeds
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tyre-brands/%d", brand.ID), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/tyre-brands/%d?cascade=true", brand.ID), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUpdateTyreBrandKeepsCount(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/tyre-brands", gin.H{"name": "Pirelli", "country": "Italy"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand struct {
		ID uint `json:"id"`
	}
	decode(t, w, &brand)

	w = doJSON(t, router, http.MethodPost, "/api/tyres", gin.H{
		"brand_id": brand.ID,
		"model":    "P Zero",
		"size":     "235/40R19",
		"type":     "Performance",
		"price":    249.99,
		"stock":    89,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// the update response carries the live dependent count, not a zero
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/tyre-brands/%d", brand.ID), gin.H{"country": "IT"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated struct {
		Country    string `json:"country"`
		TyresCount int64  `json:"tyres_count"`
	}
	decode(t, w, &updated)
	assert.Equal(t, "IT", updated.Country)
	assert.Equal(t, int64(1), updated.TyresCount)
}

func TestInventoryEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/tyre-brands", gin.H{"name": "Hankook", "country": "South Korea"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand struct {
		ID uint `json:"id"`
	}
	decode(t, w, &brand)

	w = doJSON(t, router, http.MethodPost, "/api/tyres", gin.H{
		"brand_id":        brand.ID,
		"model":           "Kinergy GT",
		"size":            "215/60R16",
		"type":            "All-Season",
		"price":           119.99,
		"stock":           100,
		"min_stock_level": 50,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tyre struct {
		ID uint `json:"id"`
	}
	decode(t, w, &tyre)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/inventory/%d", tyre.ID), gin.H{"stock": 20})
	require.Equal(t, http.StatusOK, w.Code)
	var item struct {
		Stock  int    `json:"stock"`
		Status string `json:"status"`
	}
	decode(t, w, &item)
	assert.Equal(t, 20, item.Stock)
	assert.Equal(t, "Critical", item.Status)

	w = doJSON(t, router, http.MethodGet, "/api/inventory/low-stock", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var flagged []struct {
		TyreID uint `json:"tyre_id"`
	}
	decode(t, w, &flagged)
	require.Len(t, flagged, 1)
	assert.Equal(t, tyre.ID, flagged[0].TyreID)
}

func TestOrderEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/tyre-brands", gin.H{"name": "Bridgestone", "country": "Japan"})
	require.Equal(t, http.StatusCreated, w.Code)
	var brand struct {
		ID uint `json:"id"`
	}
	decode(t, w, &brand)

	w = doJSON(t, router, http.MethodPost, "/api/tyres", gin.H{
		"brand_id": brand.ID,
		"model":    "Turanza T005",
		"size":     "225/45R17",
		"type":     "Comfort",
		"price":    165.99,
		"stock":    10,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var tyre struct {
		ID uint `json:"id"`
	}
	decode(t, w, &tyre)

	w = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"customer_name": "Alex Chen",
		"items":         []gin.H{{"tyre_id": tyre.ID, "quantity": 4}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order struct {
		ID          uint    `json:"id"`
		OrderCode   string  `json:"order_code"`
		Status      string  `json:"status"`
		TotalAmount float64 `json:"total_amount"`
		ItemsCount  int     `json:"items_count"`
	}
	decode(t, w, &order)
	assert.Equal(t, "MTX-00001", order.OrderCode)
	assert.Equal(t, "Pending", order.Status)
	assert.InDelta(t, 663.96, order.TotalAmount, 0.001)
	assert.Equal(t, 1, order.ItemsCount)

	// overselling maps to 409
	w = doJSON(t, router, http.MethodPost, "/api/orders", gin.H{
		"customer_name": "Sam Ortiz",
		"items":         []gin.H{{"tyre_id": tyre.ID, "quantity": 7}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID), gin.H{"status": "Completed"})
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/api/orders/%d/status", order.ID), gin.H{"status": "Shipped"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats struct {
		TotalOrders  int64   `json:"total_orders"`
		TotalRevenue float64 `json:"total_revenue"`
		TyresInStock int64   `json:"tyres_in_stock"`
	}
	decode(t, w, &stats)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.InDelta(t, 663.96, stats.TotalRevenue, 0.001)
	assert.Equal(t, int64(6), stats.TyresInStock)
}

func TestChatEndpoints(t *testing.T) {
	router := setupRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/chat", gin.H{"message": "Do you have 225/45R17 tyres?"})
	require.Equal(t, http.StatusOK, w.Code)
	var exchange struct {
		SessionID    uint `json:"session_id"`
		AgentMessage struct {
			Sender string `json:"sender"`
			Text   string `json:"text"`
		} `json:"agent_message"`
	}
	decode(t, w, &exchange)
	assert.NotZero(t, exchange.SessionID)
	assert.Equal(t, "agent", exchange.AgentMessage.Sender)
	assert.Equal(t, "echo: Do you have 225/45R17 tyres?", exchange.AgentMessage.Text)

	// follow-up in the same session
	w = doJSON(t, router, http.MethodPost, "/api/chat", gin.H{
		"session_id": exchange.SessionID,
		"message":    "What about 205/55R16?",
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/chat/sessions/%d", exchange.SessionID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Session struct {
			Title string `json:"title"`
		} `json:"session"`
		Messages []struct {
			Sender string `json:"sender"`
		} `json:"messages"`
	}
	decode(t, w, &detail)
	assert.Equal(t, "Do you have 225/45R17 tyres?", detail.Session.Title)
	require.Len(t, detail.Messages, 4)

	w = doJSON(t, router, http.MethodPost, "/api/chat", gin.H{"session_id": 9999, "message": "hi"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/chat", gin.H{"message": "   "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
