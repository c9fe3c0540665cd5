package infra

import (
	"fmt"

	"cajacore/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx, runs AutoMigrate to
// create / update all tables, then applies the idempotent SQL patches that
// GORM cannot express (partial indexes).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations applies the schema; also used by the integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.SesionCaja{},
		&model.Pedido{},
		&model.Gasto{},
		&model.FacturaCompra{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL statements that GORM AutoMigrate
// cannot handle on its own. Each statement uses IF NOT EXISTS semantics so
// re-running on an already-patched DB is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// The single-open-session invariant: at most one row may have
		// cerrada = false, enforced at the store level rather than by an
		// application scan.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_sesiones_caja_abierta') THEN
		    CREATE UNIQUE INDEX uni_sesiones_caja_abierta
		        ON sesiones_caja (cerrada)
		        WHERE cerrada = false;
		  END IF;
		END $$`,
		// Orphan lookup: paid orders with no session.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pedidos_huerfanos') THEN
		    CREATE INDEX idx_pedidos_huerfanos
		        ON pedidos (fecha_pago)
		        WHERE sesion_caja_id IS NULL AND estado = 'pagado';
		  END IF;
		END $$`,
		// Drawer-paid purchase invoices per session.
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_facturas_compra_caja') THEN
		    CREATE INDEX idx_facturas_compra_caja
		        ON facturas_compra (sesion_caja_id, fecha)
		        WHERE pagado_desde_caja = true;
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
