package migrate

import (
	"context"

	"tyrehub/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Options struct {
	CreateChecks  bool // CHECK constraints for data integrity
	CreateIndexes bool // listing/lookup indexes beyond the tag-defined ones
}

func DefaultOptions() Options {
	return Options{
		CreateChecks:  true,
		CreateIndexes: true,
	}
}

// Migrate creates the full schema. The raw-SQL extras are
// Postgres-only and are skipped on other dialects (the sqlite test harness).
func Migrate(ctx context.Context, db *gorm.DB, log *zap.Logger, opt Options) error {
	log.Info("running database migration")

	if err := db.WithContext(ctx).AutoMigrate(
		&models.CarBrand{},
		&models.CarModel{},
		&models.TyreBrand{},
		&models.Tyre{},
		&models.Order{},
		&models.OrderItem{},
		&models.ChatSession{},
		&models.ChatMessage{},
	); err != nil {
		log.Error("failed to create tables", zap.Error(err))
		return err
	}

	if db.Dialector.Name() != "postgres" {
		log.Info("non-postgres dialect, skipping constraint extras")
		return nil
	}

	if opt.CreateChecks {
		for _, stmt := range []string{
			`ALTER TABLE tyres
  DROP CONSTRAINT IF EXISTS chk_tyres_stock_non_negative;
ALTER TABLE tyres
  ADD CONSTRAINT chk_tyres_stock_non_negative
  CHECK (stock >= 0 AND min_stock_level >= 0);`,
			`ALTER TABLE tyres
  DROP CONSTRAINT IF EXISTS chk_tyres_prices_non_negative;
ALTER TABLE tyres
  ADD CONSTRAINT chk_tyres_prices_non_negative
  CHECK (price >= 0 AND cost >= 0);`,
			`ALTER TABLE car_models
  DROP CONSTRAINT IF EXISTS chk_car_models_year_positive;
ALTER TABLE car_models
  ADD CONSTRAINT chk_car_models_year_positive
  CHECK (year > 0);`,
			`ALTER TABLE order_items
  DROP CONSTRAINT IF EXISTS chk_order_items_quantity_gt_zero;
ALTER TABLE order_items
  ADD CONSTRAINT chk_order_items_quantity_gt_zero
  CHECK (quantity > 0);`,
			`ALTER TABLE orders
  DROP CONSTRAINT IF EXISTS chk_orders_status_allowed;
ALTER TABLE orders
  ADD CONSTRAINT chk_orders_status_allowed
  CHECK (status IN ('Pending','Confirmed','Processing','Ready','Shipped','Delivered','Completed','Cancelled'));`,
			`ALTER TABLE chat_messages
  DROP CONSTRAINT IF EXISTS chk_chat_messages_sender_allowed;
ALTER TABLE chat_messages
  ADD CONSTRAINT chk_chat_messages_sender_allowed
  CHECK (sender IN ('user','agent'));`,
		} {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("failed to create CHECK constraint", zap.Error(err))
				return err
			}
		}
		log.Info("CHECK constraints created")
	}

	if opt.CreateIndexes {
		for _, stmt := range []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS ux_tyres_brand_model_size
ON tyres (brand_id, lower(model), lower(size));`,
			`CREATE INDEX IF NOT EXISTS ix_orders_status_created
ON orders (status, created_at DESC);`,
			`CREATE INDEX IF NOT EXISTS ix_chat_messages_session_id
ON chat_messages (session_id, id);`,
		} {
			if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
				log.Error("failed to create index", zap.Error(err))
				return err
			}
		}
		log.Info("indexes created")
	}

	log.Info("database migration completed")
	return nil
}
