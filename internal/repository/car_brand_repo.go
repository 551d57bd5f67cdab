package repository

import (
	"context"
	"errors"

	"tyrehub/internal/models"

	"gorm.io/gorm"
)

// CarBrandRow carries the dependent-model count computed at read time.
type CarBrandRow struct {
	models.CarBrand `gorm:"embedded"`
	ModelsCount     int64
}

type CarBrandRepo interface {
	Create(ctx context.Context, b *models.CarBrand) error
	GetByID(ctx context.Context, id uint) (*models.CarBrand, error)
	GetByName(ctx context.Context, name string) (*models.CarBrand, error)
	List(ctx context.Context) ([]CarBrandRow, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type carBrandRepo struct{ db *gorm.DB }

func NewCarBrandRepo(db *gorm.DB) CarBrandRepo { return &carBrandRepo{db: db} }

func (r *carBrandRepo) Create(ctx context.Context, b *models.CarBrand) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *carBrandRepo) GetByID(ctx context.Context, id uint) (*models.CarBrand, error) {
	var b models.CarBrand
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *carBrandRepo) GetByName(ctx context.Context, name string) (*models.CarBrand, error) {
	var b models.CarBrand
	err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *carBrandRepo) List(ctx context.Context) ([]CarBrandRow, error) {
	var rows []CarBrandRow
	err := r.db.WithContext(ctx).
		Model(&models.CarBrand{}).
		Select("car_brands.*, COUNT(car_models.id) AS models_count").
		Joins("LEFT JOIN car_models ON car_models.brand_id = car_brands.id").
		Group("car_brands.id").
		Order("car_brands.name").
		Find(&rows).Error
	return rows, err
}

func (r *carBrandRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.CarBrand{}).Where("id = ?", id).Updates(fields).Error
}

func (r *carBrandRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.CarBrand{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}
