package http

import (
	"net/http"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"
	"tyrehub/internal/service"

	"github.com/gin-gonic/gin"
)

type carBrandResponse struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	ModelsCount int64     `json:"models_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCarBrandResponse(b *models.CarBrand, count int64) carBrandResponse {
	return carBrandResponse{
		ID:          b.ID,
		Name:        b.Name,
		Country:     b.Country,
		ModelsCount: count,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

type carModelResponse struct {
	ID        uint      `json:"id"`
	BrandID   uint      `json:"brand_id"`
	BrandName string    `json:"brand_name"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	TyreSizes []string  `json:"tyre_sizes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toCarModelResponse(row repository.CarModelRow) carModelResponse {
	sizes := row.TyreSizes
	if sizes == nil {
		sizes = []string{}
	}
	return carModelResponse{
		ID:        row.ID,
		BrandID:   row.BrandID,
		BrandName: row.BrandName,
		Name:      row.Name,
		Year:      row.Year,
		TyreSizes: sizes,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type tyreBrandResponse struct {
	ID         uint      `json:"id"`
	Name       string    `json:"name"`
	Country    string    `json:"country"`
	TyresCount int64     `json:"tyres_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toTyreBrandResponse(b *models.TyreBrand, count int64) tyreBrandResponse {
	return tyreBrandResponse{
		ID:         b.ID,
		Name:       b.Name,
		Country:    b.Country,
		TyresCount: count,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

type tyreResponse struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	BrandID        uint      `json:"brand_id"`
	BrandName      string    `json:"brand_name"`
	Model          string    `json:"model"`
	Size           string    `json:"size"`
	Type           string    `json:"type"`
	Price          float64   `json:"price"`
	Cost           float64   `json:"cost"`
	Stock          int       `json:"stock"`
	MinStockLevel  int       `json:"min_stock_level"`
	StockUpdatedAt time.Time `json:"stock_updated_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toTyreResponse(row repository.TyreRow) tyreResponse {
	return tyreResponse{
		ID:             row.ID,
		Name:           service.TyreDisplayName(row.BrandName, row.Model, row.Size),
		BrandID:        row.BrandID,
		BrandName:      row.BrandName,
		Model:          row.Model,
		Size:           row.Size,
		Type:           row.Type,
		Price:          row.Price,
		Cost:           row.Cost,
		Stock:          row.Stock,
		MinStockLevel:  row.MinStockLevel,
		StockUpdatedAt: row.StockUpdatedAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}

// --- car brands ---

func (h *Handlers) listCarBrands(c *gin.Context) {
	rows, err := h.Catalog.ListCarBrands(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]carBrandResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCarBrandResponse(&row.CarBrand, row.ModelsCount))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) createCarBrand(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Catalog.CreateCarBrand(c.Request.Context(), service.CarBrandInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCarBrandResponse(b, 0))
}

func (h *Handlers) getCarBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, count, err := h.Catalog.GetCarBrand(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarBrandResponse(b, count))
}

func (h *Handlers) updateCarBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Country *string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Catalog.UpdateCarBrand(c.Request.Context(), id, service.CarBrandPatch(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	_, count, err := h.Catalog.GetCarBrand(c.Request.Context(), b.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarBrandResponse(b, count))
}

func (h *Handlers) deleteCarBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"
	if err := h.Catalog.DeleteCarBrand(c.Request.Context(), id, cascade); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- car models ---

func (h *Handlers) listCarModels(c *gin.Context) {
	rows, err := h.Catalog.ListCarModels(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]carModelResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCarModelResponse(row))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) createCarModel(c *gin.Context) {
	var req struct {
		BrandID   uint     `json:"brand_id"`
		Name      string   `json:"name"`
		Year      int      `json:"year"`
		TyreSizes []string `json:"tyre_sizes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Catalog.CreateCarModel(c.Request.Context(), service.CarModelInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCarModelResponse(*row))
}

func (h *Handlers) getCarModel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, err := h.Catalog.GetCarModel(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarModelResponse(*row))
}

func (h *Handlers) updateCarModel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		BrandID   *uint     `json:"brand_id"`
		Name      *string   `json:"name"`
		Year      *int      `json:"year"`
		TyreSizes *[]string `json:"tyre_sizes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Catalog.UpdateCarModel(c.Request.Context(), id, service.CarModelPatch(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarModelResponse(*row))
}

func (h *Handlers) deleteCarModel(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCarModel(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- tyre brands ---

func (h *Handlers) listTyreBrands(c *gin.Context) {
	rows, err := h.Catalog.ListTyreBrands(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]tyreBrandResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTyreBrandResponse(&row.TyreBrand, row.TyresCount))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) createTyreBrand(c *gin.Context) {
	var req struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Catalog.CreateTyreBrand(c.Request.Context(), service.TyreBrandInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTyreBrandResponse(b, 0))
}

func (h *Handlers) getTyreBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	b, count, err := h.Catalog.GetTyreBrand(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTyreBrandResponse(b, count))
}

func (h *Handlers) updateTyreBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Country *string `json:"country"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	b, err := h.Catalog.UpdateTyreBrand(c.Request.Context(), id, service.TyreBrandPatch(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	_, count, err := h.Catalog.GetTyreBrand(c.Request.Context(), b.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTyreBrandResponse(b, count))
}

func (h *Handlers) deleteTyreBrand(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cascade := c.Query("cascade") == "true"
	if err := h.Catalog.DeleteTyreBrand(c.Request.Context(), id, cascade); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- tyres ---

func (h *Handlers) listTyres(c *gin.Context) {
	rows, err := h.Catalog.ListTyres(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	out := make([]tyreResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTyreResponse(row))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handlers) createTyre(c *gin.Context) {
	var req struct {
		BrandID       uint    `json:"brand_id"`
		Model         string  `json:"model"`
		Size          string  `json:"size"`
		Type          string  `json:"type"`
		Price         float64 `json:"price"`
		Cost          float64 `json:"cost"`
		Stock         int     `json:"stock"`
		MinStockLevel *int    `json:"min_stock_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Catalog.CreateTyre(c.Request.Context(), service.TyreInput(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toTyreResponse(*row))
}

func (h *Handlers) getTyre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	row, err := h.Catalog.GetTyre(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTyreResponse(*row))
}

func (h *Handlers) updateTyre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req struct {
		BrandID       *uint    `json:"brand_id"`
		Model         *string  `json:"model"`
		Size          *string  `json:"size"`
		Type          *string  `json:"type"`
		Price         *float64 `json:"price"`
		Cost          *float64 `json:"cost"`
		Stock         *int     `json:"stock"`
		MinStockLevel *int     `json:"min_stock_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	row, err := h.Catalog.UpdateTyre(c.Request.Context(), id, service.TyrePatch(req))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTyreResponse(*row))
}

func (h *Handlers) deleteTyre(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Catalog.DeleteTyre(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
