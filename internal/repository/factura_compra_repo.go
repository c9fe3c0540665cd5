package repository

import (
	"context"
	"time"

	"cajacore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FacturaCompraRepository is the read-only surface over purchase invoices.
// Only invoices paid from the drawer matter to reconciliation.
type FacturaCompraRepository interface {
	FindPagadasDesdeCajaHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.FacturaCompra, error)
}

type facturaCompraRepo struct{ db *gorm.DB }

func NewFacturaCompraRepository(db *gorm.DB) FacturaCompraRepository {
	return &facturaCompraRepo{db: db}
}

func (r *facturaCompraRepo) FindPagadasDesdeCajaHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.FacturaCompra, error) {
	var facturas []model.FacturaCompra
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND pagado_desde_caja = true AND fecha <= ?", sesionID, hasta).
		Order("fecha ASC").
		Find(&facturas).Error
	return facturas, err
}
