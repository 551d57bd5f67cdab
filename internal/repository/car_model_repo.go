package repository

import (
	"context"
	"errors"

	"tyrehub/internal/models"

	"gorm.io/gorm"
)

// CarModelRow joins the owning brand's name for display.
type CarModelRow struct {
	models.CarModel `gorm:"embedded"`
	BrandName       string
}

type CarModelRepo interface {
	Create(ctx context.Context, m *models.CarModel) error
	GetByID(ctx context.Context, id uint) (*models.CarModel, error)
	List(ctx context.Context) ([]CarModelRow, error)
	CountByBrand(ctx context.Context, brandID uint) (int64, error)
	Count(ctx context.Context) (int64, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
	DeleteByBrand(ctx context.Context, brandID uint) (int64, error)
}

type carModelRepo struct{ db *gorm.DB }

func NewCarModelRepo(db *gorm.DB) CarModelRepo { return &carModelRepo{db: db} }

func (r *carModelRepo) Create(ctx context.Context, m *models.CarModel) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *carModelRepo) GetByID(ctx context.Context, id uint) (*models.CarModel, error) {
	var m models.CarModel
	err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &m, err
}

func (r *carModelRepo) List(ctx context.Context) ([]CarModelRow, error) {
	var rows []CarModelRow
	err := r.db.WithContext(ctx).
		Model(&models.CarModel{}).
		Select("car_models.*, car_brands.name AS brand_name").
		Joins("JOIN car_brands ON car_brands.id = car_models.brand_id").
		Order("car_brands.name, car_models.name").
		Find(&rows).Error
	return rows, err
}

func (r *carModelRepo) CountByBrand(ctx context.Context, brandID uint) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.CarModel{}).Where("brand_id = ?", brandID).Count(&cnt).Error
	return cnt, err
}

func (r *carModelRepo) Count(ctx context.Context) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&models.CarModel{}).Count(&cnt).Error
	return cnt, err
}

func (r *carModelRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.CarModel{}).Where("id = ?", id).Updates(fields).Error
}

func (r *carModelRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.CarModel{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}

func (r *carModelRepo) DeleteByBrand(ctx context.Context, brandID uint) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&models.CarModel{}, "brand_id = ?", brandID)
	return tx.RowsAffected, tx.Error
}
