package repository

import (
	"context"
	"errors"

	"tyrehub/internal/models"

	"gorm.io/gorm"
)

// TyreBrandRow carries the dependent-tyre count computed at read time.
type TyreBrandRow struct {
	models.TyreBrand `gorm:"embedded"`
	TyresCount       int64
}

type TyreBrandRepo interface {
	Create(ctx context.Context, b *models.TyreBrand) error
	GetByID(ctx context.Context, id uint) (*models.TyreBrand, error)
	GetByName(ctx context.Context, name string) (*models.TyreBrand, error)
	List(ctx context.Context) ([]TyreBrandRow, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) (bool, error)
}

type tyreBrandRepo struct{ db *gorm.DB }

func NewTyreBrandRepo(db *gorm.DB) TyreBrandRepo { return &tyreBrandRepo{db: db} }

func (r *tyreBrandRepo) Create(ctx context.Context, b *models.TyreBrand) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *tyreBrandRepo) GetByID(ctx context.Context, id uint) (*models.TyreBrand, error) {
	var b models.TyreBrand
	err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *tyreBrandRepo) GetByName(ctx context.Context, name string) (*models.TyreBrand, error) {
	var b models.TyreBrand
	err := r.db.WithContext(ctx).Where("lower(name) = lower(?)", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &b, err
}

func (r *tyreBrandRepo) List(ctx context.Context) ([]TyreBrandRow, error) {
	var rows []TyreBrandRow
	err := r.db.WithContext(ctx).
		Model(&models.TyreBrand{}).
		Select("tyre_brands.*, COUNT(tyres.id) AS tyres_count").
		Joins("LEFT JOIN tyres ON tyres.brand_id = tyre_brands.id").
		Group("tyre_brands.id").
		Order("tyre_brands.name").
		Find(&rows).Error
	return rows, err
}

func (r *tyreBrandRepo) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&models.TyreBrand{}).Where("id = ?", id).Updates(fields).Error
}

func (r *tyreBrandRepo) Delete(ctx context.Context, id uint) (bool, error) {
	tx := r.db.WithContext(ctx).Delete(&models.TyreBrand{}, "id = ?", id)
	return tx.RowsAffected > 0, tx.Error
}
