package repository

import (
	"context"
	"errors"
	"time"

	"tyrehub/internal/models"

	"gorm.io/gorm"
)

// TyreRow joins the owning brand's name for display.
type TyreRow struct {
	models.Tyre `gorm:"embedded"`
	BrandName   string
}

type TyreRepo interface {
	Create(ctx context.Context, t *models.Tyre) error
	GetByID(ctx context.Context, id uint) (*models.Tyre, error)
	GetRowByID(ctx context.Context, id uint) (*TyreRow, error)
	GetBySKU(ctx context.Context, brandID uint, model, size string) (*models.Tyre, error)
	List(ctx context.Context) ([]TyreRow, error)
	ListBySize(ctx context.Context, size string, inStockOnly bool) ([]TyreRow, error)
	CountByBrand(ctx context.Context, brandID uint) (int64, error)
	SumStock(ctx context.Context) (int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteByBrand(ctx context.Context, brandID uint) (int64, error)

	// SetStock overwrites the stock level and bumps stock_updated_at.
	SetStock(ctx context.Context, id uint, stock int, now time.Time) (bool, error)
	// TryReserve: if stock >= qty then stock -= qty, in one conditional UPDATE.
	// Returns false when the guard fails; concurrent reservations of the same
	// SKU serialize on the row and can never oversell.
	TryReserve(ctx context.Context, id uint, qty int, now time.Time) (bool, error)
	// Release is the compensating increment for a reservation.
	Release(ctx context.Context, id uint, qty int, now time.Time) (bool, error)
}

type tyreRepo struct{ db *gorm.DB }

func NewTyreRepo(db *gorm.DB) TyreRepo { return &tyreRepo{db: db} }

func (r *tyreRepo) Create(ctx context.Context, t *models.Tyre) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tyreRepo) GetByID(ctx context.Context, id uint) (*models.Tyre, error) {
	var t models.Tyre
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tyreRepo) GetRowByID(ctx context.Context, id uint) (*TyreRow, error) {
	var row TyreRow
	err := r.joined(ctx).Where("tyres.id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &row, err
}

func (r *tyreRepo) GetBySKU(ctx context.Context, brandID uint, model, size string) (*models.Tyre, error) {
	var t models.Tyre
	err := r.db.WithContext(ctx).
		Where("brand_id = ? AND lower(model) = lower(?) AND lower(size) = lower(?)", brandID, model, size).
		First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &t, err
}

func (r *tyreRepo) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Tyre{}).
		Select("tyres.*, tyre_brands.name AS brand_name").
		Joins("JOIN tyre_brands ON tyre_brands.id = tyres.brand_id")
}

func (r *tyreRepo) List(ctx context.Context) ([]TyreRow, error) {
	var rows []TyreRow
	err := r.joined(ctx).Order("tyre_brands.name, tyres.model").Find(&rows).Error
	return rows, err
}

func (r *tyreRepo) ListBySize(ctx context.Context, size string, inStockOnly bool) ([]TyreRow, error) {
	q := r.joined(ctx).Where("tyres.size = ?", size)
	if inStockOnly {
		q = q.Where("tyres.stock > 0")
	}
	var rows []TyreRow
	err := q.Order("tyre_brands.name, tyres.model").Find(&rows).Error
	return rows, err
}

func (r *tyreRepo) CountByBrand(ctx context.Context, brandID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.Tyre{}).Where("brand_id = ?", brandID).Count(&cnt).Error
	return cnt, err
}

func (r *tyreRepo) SumStock(ctx context.Context) (int64, error) {
	var sum *int64
	err := r.db.WithContext(ctx).Model(&models.Tyre{}).Select("SUM(stock)").Scan(&sum).Error
	if sum == nil {
		return 0, err
	}
	return *sum, err
}

func (r *tyreRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.Tyre{}).Where("id = ?", id).Updates(fields).Error
}

func (r *tyreRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Tyre{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *tyreRepo) DeleteByBrand(ctx context.Context, brandID uint) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&models.Tyre{}, "brand_id = ?", brandID)
	return tx.RowsAffected, tx.Error
}

func (r *tyreRepo) SetStock(ctx context.Context, id uint, stock int, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.Tyre{}).Where("id = ?", id).Updates(map[string]any{
		"stock":            stock,
		"stock_updated_at": now,
	})
	return tx.RowsAffected > 0, tx.Error
}

func (r *tyreRepo) TryReserve(ctx context.Context, id uint, qty int, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE tyres
SET stock = stock - ?,
    stock_updated_at = ?
WHERE id = ?
  AND stock >= ?
`, qty, now, id, qty)
	return tx.RowsAffected > 0, tx.Error
}

func (r *tyreRepo) Release(ctx context.Context, id uint, qty int, now time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Exec(`
UPDATE tyres
SET stock = stock + ?,
    stock_updated_at = ?
WHERE id = ?
`, qty, now, id)
	return tx.RowsAffected > 0, tx.Error
}
