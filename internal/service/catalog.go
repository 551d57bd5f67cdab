package service

import (
	"context"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"
)

type CarBrandInput struct {
	Name    string
	Country string
}

type CarBrandPatch struct {
	Name    *string
	Country *string
}

type CarModelInput struct {
	BrandID   uint
	Name      string
	Year      int
	TyreSizes []string
}

type CarModelPatch struct {
	BrandID   *uint
	Name      *string
	Year      *int
	TyreSizes *[]string
}

type TyreBrandInput struct {
	Name    string
	Country string
}

type TyreBrandPatch struct {
	Name    *string
	Country *string
}

type TyreInput struct {
	BrandID       uint
	Model         string
	Size          string
	Type          string
	Price         float64
	Cost          float64
	Stock         int
	MinStockLevel *int // nil means the default threshold
}

type TyrePatch struct {
	BrandID       *uint
	Model         *string
	Size          *string
	Type          *string
	Price         *float64
	Cost          *float64
	Stock         *int
	MinStockLevel *int
}

type CatalogService interface {
	CreateCarBrand(ctx context.Context, in CarBrandInput) (*models.CarBrand, error)
	GetCarBrand(ctx context.Context, id uint) (*models.CarBrand, int64, error)
	ListCarBrands(ctx context.Context) ([]repository.CarBrandRow, error)
	UpdateCarBrand(ctx context.Context, id uint, patch CarBrandPatch) (*models.CarBrand, error)
	DeleteCarBrand(ctx context.Context, id uint, cascade bool) error

	CreateCarModel(ctx context.Context, in CarModelInput) (*repository.CarModelRow, error)
	GetCarModel(ctx context.Context, id uint) (*repository.CarModelRow, error)
	ListCarModels(ctx context.Context) ([]repository.CarModelRow, error)
	UpdateCarModel(ctx context.Context, id uint, patch CarModelPatch) (*repository.CarModelRow, error)
	DeleteCarModel(ctx context.Context, id uint) error

	CreateTyreBrand(ctx context.Context, in TyreBrandInput) (*models.TyreBrand, error)
	GetTyreBrand(ctx context.Context, id uint) (*models.TyreBrand, int64, error)
	ListTyreBrands(ctx context.Context) ([]repository.TyreBrandRow, error)
	UpdateTyreBrand(ctx context.Context, id uint, patch TyreBrandPatch) (*models.TyreBrand, error)
	DeleteTyreBrand(ctx context.Context, id uint, cascade bool) error

	CreateTyre(ctx context.Context, in TyreInput) (*repository.TyreRow, error)
	GetTyre(ctx context.Context, id uint) (*repository.TyreRow, error)
	ListTyres(ctx context.Context) ([]repository.TyreRow, error)
	UpdateTyre(ctx context.Context, id uint, patch TyrePatch) (*repository.TyreRow, error)
	DeleteTyre(ctx context.Context, id uint) error
}
