package migrate

import (
	"context"

	"github.com/varunhp06/campus-connect-sub000/internal/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type MigrateOptions struct {
	CreateExtensions       bool // pgcrypto
	CreateChecks           bool // CHECK-constraint'ы
	CreateIndexes          bool // индексы и UNIQUE
	CreateFKsViaSQL        bool // FK через Exec после AutoMigrate
	CreateUpdatedAtTrigger bool // триггеры updated_at
}

func DefaultMigrateOptions() MigrateOptions {
	return MigrateOptions{
		CreateExtensions:       true,
		CreateChecks:           true,
		CreateIndexes:          true,
		CreateFKsViaSQL:        true,
		CreateUpdatedAtTrigger: true,
	}
}

func MigrateCampusDB(ctx context.Context, db *gorm.DB, log *zap.Logger, opt MigrateOptions) error {
	log.Info("Начало миграции базы кампус-сервисов")

	if opt.CreateExtensions {
		log.Info("Создание расширений PostgreSQL")
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
			log.Error("pgcrypto error", zap.Error(err))
			return err
		}
	}

	log.Info("Создание таблиц")
	if err := db.AutoMigrate(
		&models.CatalogItem{},
		&models.Inventory{},
		&models.RentRequest{},
		&models.RentRequestItem{},
		&models.Holding{},
		&models.HoldingItem{},
		&models.ReturnRequest{},
		&models.ReturnRequestItem{},
		&models.FoodOrder{},
		&models.FoodOrderItem{},
	); err != nil {
		log.Error("AutoMigrate error", zap.Error(err))
		return err
	}

	if opt.CreateUpdatedAtTrigger {
		log.Info("Создание триггеров updated_at")
		if err := db.Exec(`
CREATE OR REPLACE FUNCTION set_updated_at() RETURNS trigger AS $$
BEGIN NEW.updated_at = now(); RETURN NEW; END; $$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS trg_catalog_items_updated ON catalog_items;
CREATE TRIGGER trg_catalog_items_updated BEFORE UPDATE ON catalog_items
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_inventories_updated ON inventories;
CREATE TRIGGER trg_inventories_updated BEFORE UPDATE ON inventories
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_rent_requests_updated ON rent_requests;
CREATE TRIGGER trg_rent_requests_updated BEFORE UPDATE ON rent_requests
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_return_requests_updated ON return_requests;
CREATE TRIGGER trg_return_requests_updated BEFORE UPDATE ON return_requests
FOR EACH ROW EXECUTE FUNCTION set_updated_at();

DROP TRIGGER IF EXISTS trg_food_orders_updated ON food_orders;
CREATE TRIGGER trg_food_orders_updated BEFORE UPDATE ON food_orders
FOR EACH ROW EXECUTE FUNCTION set_updated_at();
`).Error; err != nil {
			log.Error("triggers error", zap.Error(err))
			return err
		}
	}

	if opt.CreateChecks {
		log.Info("Создание CHECK-ограничений")

		// Главный инвариант склада: 0 <= reserved <= total_stock
		if err := db.Exec(`
ALTER TABLE inventories
	DROP CONSTRAINT IF EXISTS chk_inventories_reserved_bounds,
	ADD CONSTRAINT chk_inventories_reserved_bounds
	CHECK (reserved >= 0 AND total_stock >= 0 AND reserved <= total_stock);
`).Error; err != nil {
			log.Error("chk inventories", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE catalog_items
	DROP CONSTRAINT IF EXISTS chk_catalog_items_price_non_negative,
	ADD CONSTRAINT chk_catalog_items_price_non_negative
	CHECK (price_cents >= 0);
`).Error; err != nil {
			log.Error("chk price", zap.Error(err))
			return err
		}

		for _, stmt := range []string{
			`ALTER TABLE rent_request_items
	DROP CONSTRAINT IF EXISTS chk_rent_request_items_quantity_gt_zero,
	ADD CONSTRAINT chk_rent_request_items_quantity_gt_zero CHECK (quantity > 0);`,
			`ALTER TABLE holding_items
	DROP CONSTRAINT IF EXISTS chk_holding_items_quantity_gt_zero,
	ADD CONSTRAINT chk_holding_items_quantity_gt_zero CHECK (quantity > 0);`,
			`ALTER TABLE return_request_items
	DROP CONSTRAINT IF EXISTS chk_return_request_items_quantity_gt_zero,
	ADD CONSTRAINT chk_return_request_items_quantity_gt_zero CHECK (quantity > 0);`,
			`ALTER TABLE food_order_items
	DROP CONSTRAINT IF EXISTS chk_food_order_items_quantity_gt_zero,
	ADD CONSTRAINT chk_food_order_items_quantity_gt_zero CHECK (quantity > 0);`,
		} {
			if err := db.Exec(stmt).Error; err != nil {
				log.Error("chk quantity", zap.Error(err))
				return err
			}
		}

		// Допустимые статусы
		if err := db.Exec(`
ALTER TABLE rent_requests
	DROP CONSTRAINT IF EXISTS chk_rent_requests_status_allowed,
	ADD CONSTRAINT chk_rent_requests_status_allowed
	CHECK (status IN ('REQUEST_STATUS_PENDING','REQUEST_STATUS_APPROVED','REQUEST_STATUS_REJECTED'));
`).Error; err != nil {
			log.Error("chk rent_requests.status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE return_requests
	DROP CONSTRAINT IF EXISTS chk_return_requests_status_allowed,
	ADD CONSTRAINT chk_return_requests_status_allowed
	CHECK (status IN ('RETURN_STATUS_PENDING','RETURN_STATUS_APPROVED','RETURN_STATUS_REJECTED'));
`).Error; err != nil {
			log.Error("chk return_requests.status", zap.Error(err))
			return err
		}

		if err := db.Exec(`
ALTER TABLE food_orders
	DROP CONSTRAINT IF EXISTS chk_food_orders_status_allowed,
	ADD CONSTRAINT chk_food_orders_status_allowed
	CHECK (status IN ('ORDER_STATUS_PENDING','ORDER_STATUS_PREPARING','ORDER_STATUS_OUT_FOR_DELIVERY','ORDER_STATUS_DELIVERED','ORDER_STATUS_REJECTED'));
`).Error; err != nil {
			log.Error("chk food_orders.status", zap.Error(err))
			return err
		}
	}

	if opt.CreateIndexes {
		log.Info("Создание индексов и уникальностей")

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_catalog_items_shop_created
ON catalog_items (shop_id, created_at DESC);
`).Error; err != nil {
			log.Error("ix catalog shop_created", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_rent_requests_status_created
ON rent_requests (status, created_at ASC);
`).Error; err != nil {
			log.Error("ix rent_requests status_created", zap.Error(err))
			return err
		}

		if err := db.Exec(`
CREATE INDEX IF NOT EXISTS ix_food_orders_shop_status
ON food_orders (shop_id, status, created_at ASC);
`).Error; err != nil {
			log.Error("ix food_orders shop_status", zap.Error(err))
			return err
		}
	}

	if opt.CreateFKsViaSQL {
		log.Info("Создание внешних ключей")

		// inventories.item_id -> catalog_items.id (CASCADE)
		if err := db.Exec(`
ALTER TABLE inventories
  DROP CONSTRAINT IF EXISTS fk_inventories_item,
  ADD CONSTRAINT fk_inventories_item
    FOREIGN KEY (item_id) REFERENCES catalog_items(id) ON DELETE CASCADE;
`).Error; err != nil {
			log.Error("fk inventories.item_id", zap.Error(err))
			return err
		}

		// Позиции заявок/holding-ов ссылаются на каталог. RESTRICT: позицию каталога
		// нельзя удалить, пока на неё ссылаются записи — только деактивировать.
		for _, stmt := range []string{
			`ALTER TABLE rent_request_items
  DROP CONSTRAINT IF EXISTS fk_rent_request_items_item,
  ADD CONSTRAINT fk_rent_request_items_item
    FOREIGN KEY (item_id) REFERENCES catalog_items(id) ON DELETE RESTRICT;`,
			`ALTER TABLE holding_items
  DROP CONSTRAINT IF EXISTS fk_holding_items_item,
  ADD CONSTRAINT fk_holding_items_item
    FOREIGN KEY (item_id) REFERENCES catalog_items(id) ON DELETE RESTRICT;`,
			`ALTER TABLE return_request_items
  DROP CONSTRAINT IF EXISTS fk_return_request_items_item,
  ADD CONSTRAINT fk_return_request_items_item
    FOREIGN KEY (item_id) REFERENCES catalog_items(id) ON DELETE RESTRICT;`,
			`ALTER TABLE food_order_items
  DROP CONSTRAINT IF EXISTS fk_food_order_items_item,
  ADD CONSTRAINT fk_food_order_items_item
    FOREIGN KEY (item_id) REFERENCES catalog_items(id) ON DELETE RESTRICT;`,
		} {
			if err := db.Exec(stmt).Error; err != nil {
				log.Error("fk error", zap.Error(err))
				return err
			}
		}
	}

	log.Info("Миграция базы кампус-сервисов успешно завершена")
	return nil
}
