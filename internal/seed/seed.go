// Package seed loads the demo catalog used for local development. Seeding is
// idempotent: a database with any car brand already in it is left untouched.
package seed

import (
	"context"
	"time"

	"tyrehub/internal/models"
	"tyrehub/internal/repository"

	"go.uber.org/zap"
)

type carBrandSeed struct {
	name    string
	country string
}

type carModelSeed struct {
	brand string
	name  string
	year  int
	sizes []string
}

type tyreBrandSeed struct {
	name    string
	country string
}

type tyreSeed struct {
	brand    string
	model    string
	size     string
	tyreType string
	price    float64
	cost     float64
	stock    int
	minLevel int
}

var carBrands = []carBrandSeed{
	{"Toyota", "Japan"},
	{"Honda", "Japan"},
	{"BMW", "Germany"},
	{"Mercedes-Benz", "Germany"},
	{"Ford", "USA"},
	{"Chevrolet", "USA"},
	{"Volkswagen", "Germany"},
	{"Audi", "Germany"},
	{"Nissan", "Japan"},
	{"Hyundai", "South Korea"},
}

var carModels = []carModelSeed{
	{"Toyota", "Camry", 2024, []string{"225/45R17", "225/55R17"}},
	{"Toyota", "Corolla", 2024, []string{"205/55R16", "215/55R16"}},
	{"Toyota", "RAV4", 2024, []string{"225/65R17", "225/60R18"}},
	{"Honda", "Accord", 2024, []string{"225/45R17", "225/55R17"}},
	{"Honda", "Civic", 2024, []string{"205/55R16", "215/50R17"}},
	{"Honda", "CR-V", 2024, []string{"235/60R18", "235/65R17"}},
	{"BMW", "320i", 2024, []string{"225/50R17", "225/45R18"}},
	{"BMW", "530i", 2024, []string{"235/50R18", "245/45R19"}},
	{"BMW", "X3", 2024, []string{"245/50R19", "245/45R20"}},
	{"Mercedes-Benz", "C-Class", 2024, []string{"225/45R17", "225/40R18"}},
	{"Mercedes-Benz", "E-Class", 2024, []string{"235/50R18", "245/45R19"}},
	{"Ford", "F-150", 2024, []string{"265/70R17", "275/60R20"}},
	{"Ford", "Mustang", 2024, []string{"235/50R18", "255/40R19"}},
	{"Chevrolet", "Silverado", 2024, []string{"265/70R17", "275/65R18"}},
	{"Chevrolet", "Camaro", 2024, []string{"245/40R20", "275/35R20"}},
	{"Volkswagen", "Golf", 2024, []string{"205/55R16", "225/45R17"}},
	{"Volkswagen", "Tiguan", 2024, []string{"215/65R17", "235/55R18"}},
	{"Audi", "A4", 2024, []string{"225/50R17", "245/40R18"}},
	{"Audi", "Q5", 2024, []string{"235/60R18", "255/45R20"}},
	{"Nissan", "Altima", 2024, []string{"215/55R17", "235/40R19"}},
	{"Hyundai", "Tucson", 2024, []string{"225/60R17", "235/55R18"}},
	{"Toyota", "Corolla", 2020, []string{"205/55R16", "215/45R17"}},
	{"Toyota", "Camry", 2020, []string{"215/55R17", "235/45R18"}},
}

var tyreBrands = []tyreBrandSeed{
	{"Michelin", "France"},
	{"Bridgestone", "Japan"},
	{"Continental", "Germany"},
	{"Goodyear", "USA"},
	{"Pirelli", "Italy"},
	{"Dunlop", "UK"},
	{"Hankook", "South Korea"},
	{"Kumho", "South Korea"},
	{"Yokohama", "Japan"},
	{"Toyo", "Japan"},
}

var tyres = []tyreSeed{
	{"Michelin", "Pilot Sport 4", "225/45R17", "Performance", 189.99, 95.50, 156, 100},
	{"Michelin", "Primacy 4", "205/55R16", "Comfort", 159.99, 80.00, 200, 100},
	{"Michelin", "CrossClimate 2", "225/65R17", "All-Season", 179.99, 90.00, 120, 80},
	{"Bridgestone", "Turanza T005", "225/45R17", "Comfort", 165.99, 82.75, 243, 150},
	{"Bridgestone", "Potenza S001", "235/40R19", "Performance", 229.99, 115.00, 75, 50},
	{"Bridgestone", "Dueler H/P Sport", "235/60R18", "SUV", 199.99, 100.00, 90, 60},
	{"Continental", "EcoContact 6", "205/55R16", "Eco", 129.99, 65.00, 318, 150},
	{"Continental", "PremiumContact 6", "225/45R18", "Performance", 199.99, 100.00, 85, 50},
	{"Continental", "CrossContact LX", "265/70R17", "SUV", 175.99, 88.00, 110, 70},
	{"Goodyear", "Assurance MaxLife", "225/60R17", "All-Season", 145.99, 73.00, 287, 150},
	{"Goodyear", "Eagle F1 Asymmetric", "245/45R19", "Performance", 239.99, 120.00, 60, 40},
	{"Pirelli", "P Zero", "235/40R19", "Performance", 249.99, 125.00, 89, 50},
	{"Pirelli", "Cinturato P7", "225/55R17", "Comfort", 175.99, 88.00, 140, 80},
	{"Dunlop", "SP Sport Maxx", "255/35R18", "Performance", 219.99, 110.00, 102, 60},
	{"Dunlop", "Grandtrek PT3", "225/65R17", "SUV", 155.99, 78.00, 130, 80},
	{"Hankook", "Kinergy GT", "215/60R16", "All-Season", 119.99, 60.00, 401, 200},
	{"Hankook", "Ventus V12", "225/50R17", "Performance", 149.99, 75.00, 170, 100},
	{"Kumho", "Solus TA71", "185/65R15", "Comfort", 109.99, 55.00, 523, 250},
	{"Kumho", "Ecsta PS91", "245/40R18", "Performance", 169.99, 85.00, 95, 50},
	{"Yokohama", "Advan Sport V105", "245/45R19", "Performance", 219.99, 110.00, 65, 40},
	{"Yokohama", "BluEarth GT", "215/55R17", "Eco", 139.99, 70.00, 180, 100},
	{"Toyo", "Proxes Sport", "235/50R18", "Performance", 179.99, 90.00, 115, 70},
	{"Toyo", "Open Country A/T", "275/60R20", "All-Terrain", 209.99, 105.00, 80, 50},
	{"Michelin", "LTX M/S2", "275/60R20", "All-Season", 219.99, 110.00, 70, 40},
	{"Continental", "DWS 06 Plus", "275/60R20", "All-Season", 199.99, 100.00, 55, 30},
	{"Goodyear", "Wrangler AT/S", "275/65R18", "All-Terrain", 189.99, 95.00, 100, 60},
	{"Pirelli", "Scorpion Verde", "235/55R19", "SUV", 209.99, 105.00, 72, 40},
	{"Hankook", "Dynapro HP2", "225/60R18", "SUV", 149.99, 75.00, 160, 90},
	{"Bridgestone", "Ecopia EP422", "215/55R16", "Eco", 119.99, 60.00, 210, 120},
	{"Continental", "TrueContact Tour", "215/50R17", "All-Season", 139.99, 70.00, 185, 100},
	{"Michelin", "Defender LTX M/S", "265/70R17", "All-Season", 195.99, 98.00, 130, 80},
	{"Goodyear", "Assurance WeatherReady", "215/55R17", "All-Season", 159.99, 80.00, 145, 80},
	{"Pirelli", "P7 All Season Plus", "205/55R16", "All-Season", 139.99, 70.00, 190, 100},
	{"Dunlop", "Sport BluResponse", "215/55R16", "Comfort", 129.99, 65.00, 175, 100},
	{"Yokohama", "Geolandar CV G058", "225/60R18", "SUV", 159.99, 80.00, 95, 50},
	{"Toyo", "Celsius II", "225/45R17", "All-Season", 149.99, 75.00, 200, 100},
	{"Kumho", "Crugen HP71", "235/65R17", "SUV", 139.99, 70.00, 150, 80},
}

// Run inserts the demo dataset unless car brands already exist.
func Run(ctx context.Context, repo *repository.Repository, log *zap.Logger) error {
	existing, err := repo.CarBrands.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("database already seeded, skipping")
		return nil
	}

	now := time.Now().UTC()
	return repo.WithTx(func(tx *repository.Repository) error {
		carBrandIDs := map[string]uint{}
		for _, s := range carBrands {
			b := &models.CarBrand{Name: s.name, Country: s.country}
			if err := tx.CarBrands.Create(ctx, b); err != nil {
				return err
			}
			carBrandIDs[s.name] = b.ID
		}
		log.Info("seeded car brands", zap.Int("count", len(carBrands)))

		for _, s := range carModels {
			m := &models.CarModel{
				BrandID:   carBrandIDs[s.brand],
				Name:      s.name,
				Year:      s.year,
				TyreSizes: s.sizes,
			}
			if err := tx.CarModels.Create(ctx, m); err != nil {
				return err
			}
		}
		log.Info("seeded car models", zap.Int("count", len(carModels)))

		tyreBrandIDs := map[string]uint{}
		for _, s := range tyreBrands {
			b := &models.TyreBrand{Name: s.name, Country: s.country}
			if err := tx.Brands.Create(ctx, b); err != nil {
				return err
			}
			tyreBrandIDs[s.name] = b.ID
		}
		log.Info("seeded tyre brands", zap.Int("count", len(tyreBrands)))

		for _, s := range tyres {
			t := &models.Tyre{
				BrandID:        tyreBrandIDs[s.brand],
				Model:          s.model,
				Size:           s.size,
				Type:           s.tyreType,
				Price:          s.price,
				Cost:           s.cost,
				Stock:          s.stock,
				MinStockLevel:  s.minLevel,
				StockUpdatedAt: now,
			}
			if err := tx.Tyres.Create(ctx, t); err != nil {
				return err
			}
		}
		log.Info("seeded tyres", zap.Int("count", len(tyres)))
		return nil
	})
}
