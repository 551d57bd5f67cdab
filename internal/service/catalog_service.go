package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"

	"go.uber.org/zap"
)

// DefaultMinStockLevel is applied when a tyre is created without an explicit
// threshold.
const DefaultMinStockLevel = 50

type catalogService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewCatalogService(repo *repository.Repository, log *zap.Logger) CatalogService {
	return &catalogService{repo: repo, log: log, now: time.Now}
}

// --- car brands ---

func (s *catalogService) CreateCarBrand(ctx context.Context, in CarBrandInput) (*models.CarBrand, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Country = strings.TrimSpace(in.Country)
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	existing, err := s.repo.CarBrands.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBrandNameTaken
	}
	b := &models.CarBrand{Name: in.Name, Country: in.Country}
	if err := s.repo.CarBrands.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("car brand created", zap.Uint("id", b.ID), zap.String("name", b.Name))
	return b, nil
}

func (s *catalogService) GetCarBrand(ctx context.Context, id uint) (*models.CarBrand, int64, error) {
	b, err := s.repo.CarBrands.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if b == nil {
		return nil, 0, ErrCarBrandNotFound
	}
	cnt, err := s.repo.CarModels.CountByBrand(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return b, cnt, nil
}

func (s *catalogService) ListCarBrands(ctx context.Context) ([]repository.CarBrandRow, error) {
	return s.repo.CarBrands.List(ctx)
}

func (s *catalogService) UpdateCarBrand(ctx context.Context, id uint, patch CarBrandPatch) (*models.CarBrand, error) {
	b, err := s.repo.CarBrands.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrCarBrandNotFound
	}
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationf("name must not be empty")
		}
		if !strings.EqualFold(name, b.Name) {
			other, err := s.repo.CarBrands.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrBrandNameTaken
			}
		}
		fields["name"] = name
	}
	if patch.Country != nil {
		fields["country"] = strings.TrimSpace(*patch.Country)
	}
	if err := s.repo.CarBrands.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.CarBrands.GetByID(ctx, id)
}

func (s *catalogService) DeleteCarBrand(ctx context.Context, id uint, cascade bool) error {
	b, err := s.repo.CarBrands.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrCarBrandNotFound
	}
	cnt, err := s.repo.CarModels.CountByBrand(ctx, id)
	if err != nil {
		return err
	}
	if cnt > 0 && !cascade {
		return ErrBrandHasModels
	}
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if _, err := tx.CarModels.DeleteByBrand(ctx, id); err != nil {
			return err
		}
		_, err := tx.CarBrands.Delete(ctx, id)
		return err
	})
}

// --- car models ---

func (s *catalogService) validateSizes(sizes []string) ([]string, error) {
	out := make([]string, 0, len(sizes))
	seen := map[string]struct{}{}
	for _, raw := range sizes {
		size := strings.TrimSpace(raw)
		if size == "" {
			return nil, validationf("tyre size must not be empty")
		}
		key := strings.ToUpper(size)
		if _, dup := seen[key]; dup {
			return nil, validationf("duplicate tyre size %q", size)
		}
		seen[key] = struct{}{}
		out = append(out, size)
	}
	return out, nil
}

func (s *catalogService) CreateCarModel(ctx context.Context, in CarModelInput) (*repository.CarModelRow, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	if in.Year <= 0 {
		return nil, validationf("year must be positive")
	}
	sizes, err := s.validateSizes(in.TyreSizes)
	if err != nil {
		return nil, err
	}
	brand, err := s.repo.CarBrands.GetByID(ctx, in.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrCarBrandNotFound
	}
	m := &models.CarModel{BrandID: in.BrandID, Name: in.Name, Year: in.Year, TyreSizes: sizes}
	if err := s.repo.CarModels.Create(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("car model created", zap.Uint("id", m.ID), zap.String("name", m.Name))
	return &repository.CarModelRow{CarModel: *m, BrandName: brand.Name}, nil
}

func (s *catalogService) GetCarModel(ctx context.Context, id uint) (*repository.CarModelRow, error) {
	m, err := s.repo.CarModels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrCarModelNotFound
	}
	brand, err := s.repo.CarBrands.GetByID(ctx, m.BrandID)
	if err != nil {
		return nil, err
	}
	row := &repository.CarModelRow{CarModel: *m}
	if brand != nil {
		row.BrandName = brand.Name
	}
	return row, nil
}

func (s *catalogService) ListCarModels(ctx context.Context) ([]repository.CarModelRow, error) {
	return s.repo.CarModels.List(ctx)
}

func (s *catalogService) UpdateCarModel(ctx context.Context, id uint, patch CarModelPatch) (*repository.CarModelRow, error) {
	m, err := s.repo.CarModels.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrCarModelNotFound
	}
	fields := map[string]any{}
	if patch.BrandID != nil {
		brand, err := s.repo.CarBrands.GetByID(ctx, *patch.BrandID)
		if err != nil {
			return nil, err
		}
		if brand == nil {
			return nil, ErrCarBrandNotFound
		}
		fields["brand_id"] = *patch.BrandID
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationf("name must not be empty")
		}
		fields["name"] = name
	}
	if patch.Year != nil {
		if *patch.Year <= 0 {
			return nil, validationf("year must be positive")
		}
		fields["year"] = *patch.Year
	}
	if patch.TyreSizes != nil {
		sizes, err := s.validateSizes(*patch.TyreSizes)
		if err != nil {
			return nil, err
		}
		// Updates with a map skips the model serializer, so encode here.
		raw, err := json.Marshal(sizes)
		if err != nil {
			return nil, err
		}
		fields["tyre_sizes"] = string(raw)
	}
	if err := s.repo.CarModels.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetCarModel(ctx, id)
}

func (s *catalogService) DeleteCarModel(ctx context.Context, id uint) error {
	ok, err := s.repo.CarModels.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCarModelNotFound
	}
	return nil
}

// --- tyre brands ---

func (s *catalogService) CreateTyreBrand(ctx context.Context, in TyreBrandInput) (*models.TyreBrand, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Country = strings.TrimSpace(in.Country)
	if in.Name == "" {
		return nil, validationf("name is required")
	}
	existing, err := s.repo.Brands.GetByName(ctx, in.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBrandNameTaken
	}
	b := &models.TyreBrand{Name: in.Name, Country: in.Country}
	if err := s.repo.Brands.Create(ctx, b); err != nil {
		return nil, err
	}
	s.log.Info("tyre brand created", zap.Uint("id", b.ID), zap.String("name", b.Name))
	return b, nil
}

func (s *catalogService) GetTyreBrand(ctx context.Context, id uint) (*models.TyreBrand, int64, error) {
	b, err := s.repo.Brands.GetByID(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	if b == nil {
		return nil, 0, ErrTyreBrandNotFound
	}
	cnt, err := s.repo.Tyres.CountByBrand(ctx, id)
	if err != nil {
		return nil, 0, err
	}
	return b, cnt, nil
}

func (s *catalogService) ListTyreBrands(ctx context.Context) ([]repository.TyreBrandRow, error) {
	return s.repo.Brands.List(ctx)
}

func (s *catalogService) UpdateTyreBrand(ctx context.Context, id uint, patch TyreBrandPatch) (*models.TyreBrand, error) {
	b, err := s.repo.Brands.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, ErrTyreBrandNotFound
	}
	fields := map[string]any{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, validationf("name must not be empty")
		}
		if !strings.EqualFold(name, b.Name) {
			other, err := s.repo.Brands.GetByName(ctx, name)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, ErrBrandNameTaken
			}
		}
		fields["name"] = name
	}
	if patch.Country != nil {
		fields["country"] = strings.TrimSpace(*patch.Country)
	}
	if err := s.repo.Brands.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.repo.Brands.GetByID(ctx, id)
}

func (s *catalogService) DeleteTyreBrand(ctx context.Context, id uint, cascade bool) error {
	b, err := s.repo.Brands.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if b == nil {
		return ErrTyreBrandNotFound
	}
	cnt, err := s.repo.Tyres.CountByBrand(ctx, id)
	if err != nil {
		return err
	}
	if cnt > 0 && !cascade {
		return ErrBrandHasTyres
	}
	return s.repo.WithTx(func(tx *repository.Repository) error {
		if _, err := tx.Tyres.DeleteByBrand(ctx, id); err != nil {
			return err
		}
		_, err := tx.Brands.Delete(ctx, id)
		return err
	})
}

// --- tyres ---

func (s *catalogService) CreateTyre(ctx context.Context, in TyreInput) (*repository.TyreRow, error) {
	in.Model = strings.TrimSpace(in.Model)
	in.Size = strings.TrimSpace(in.Size)
	in.Type = strings.TrimSpace(in.Type)
	switch {
	case in.Model == "":
		return nil, validationf("model is required")
	case in.Size == "":
		return nil, validationf("size is required")
	case in.Price < 0:
		return nil, validationf("price must not be negative")
	case in.Cost < 0:
		return nil, validationf("cost must not be negative")
	case in.Stock < 0:
		return nil, validationf("stock must not be negative")
	case in.MinStockLevel != nil && *in.MinStockLevel < 0:
		return nil, validationf("min stock level must not be negative")
	}
	brand, err := s.repo.Brands.GetByID(ctx, in.BrandID)
	if err != nil {
		return nil, err
	}
	if brand == nil {
		return nil, ErrTyreBrandNotFound
	}
	dup, err := s.repo.Tyres.GetBySKU(ctx, in.BrandID, in.Model, in.Size)
	if err != nil {
		return nil, err
	}
	if dup != nil {
		return nil, ErrDuplicateSKU
	}
	minLevel := DefaultMinStockLevel
	if in.MinStockLevel != nil {
		minLevel = *in.MinStockLevel
	}
	t := &models.Tyre{
		BrandID:        in.BrandID,
		Model:          in.Model,
		Size:           in.Size,
		Type:           in.Type,
		Price:          in.Price,
		Cost:           in.Cost,
		Stock:          in.Stock,
		MinStockLevel:  minLevel,
		StockUpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Tyres.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("tyre created",
		zap.Uint("id", t.ID),
		zap.String("brand", brand.Name),
		zap.String("model", t.Model),
		zap.String("size", t.Size),
	)
	return &repository.TyreRow{Tyre: *t, BrandName: brand.Name}, nil
}

func (s *catalogService) GetTyre(ctx context.Context, id uint) (*repository.TyreRow, error) {
	row, err := s.repo.Tyres.GetRowByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrTyreNotFound
	}
	return row, nil
}

func (s *catalogService) ListTyres(ctx context.Context) ([]repository.TyreRow, error) {
	return s.repo.Tyres.List(ctx)
}

func (s *catalogService) UpdateTyre(ctx context.Context, id uint, patch TyrePatch) (*repository.TyreRow, error) {
	t, err := s.repo.Tyres.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, ErrTyreNotFound
	}

	brandID := t.BrandID
	model := t.Model
	size := t.Size
	fields := map[string]any{}

	if patch.BrandID != nil {
		brand, err := s.repo.Brands.GetByID(ctx, *patch.BrandID)
		if err != nil {
			return nil, err
		}
		if brand == nil {
			return nil, ErrTyreBrandNotFound
		}
		brandID = *patch.BrandID
		fields["brand_id"] = brandID
	}
	if patch.Model != nil {
		model = strings.TrimSpace(*patch.Model)
		if model == "" {
			return nil, validationf("model must not be empty")
		}
		fields["model"] = model
	}
	if patch.Size != nil {
		size = strings.TrimSpace(*patch.Size)
		if size == "" {
			return nil, validationf("size must not be empty")
		}
		fields["size"] = size
	}
	if patch.Type != nil {
		fields["type"] = strings.TrimSpace(*patch.Type)
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return nil, validationf("price must not be negative")
		}
		fields["price"] = *patch.Price
	}
	if patch.Cost != nil {
		if *patch.Cost < 0 {
			return nil, validationf("cost must not be negative")
		}
		fields["cost"] = *patch.Cost
	}
	if patch.MinStockLevel != nil {
		if *patch.MinStockLevel < 0 {
			return nil, validationf("min stock level must not be negative")
		}
		fields["min_stock_level"] = *patch.MinStockLevel
	}
	if patch.Stock != nil {
		if *patch.Stock < 0 {
			return nil, validationf("stock must not be negative")
		}
		fields["stock"] = *patch.Stock
		fields["stock_updated_at"] = s.now().UTC()
	}

	// SKU identity changed, re-check uniqueness against everything but self.
	if patch.BrandID != nil || patch.Model != nil || patch.Size != nil {
		dup, err := s.repo.Tyres.GetBySKU(ctx, brandID, model, size)
		if err != nil {
			return nil, err
		}
		if dup != nil && dup.ID != id {
			return nil, ErrDuplicateSKU
		}
	}

	if err := s.repo.Tyres.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return s.GetTyre(ctx, id)
}

func (s *catalogService) DeleteTyre(ctx context.Context, id uint) error {
	ok, err := s.repo.Tyres.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrTyreNotFound
	}
	return nil
}
