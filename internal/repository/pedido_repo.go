package repository

import (
	"context"
	"time"

	"cajacore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PedidoRepository is the read surface the reconciliation core has over the
// order subsystem, plus the single write it is allowed: stamping a session id.
type PedidoRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	// FindBySesionHasta returns every order stamped with the session id whose
	// payment (when there is one) landed at or before hasta. The cutoff is
	// what makes close-time aggregation a stable snapshot.
	FindBySesionHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Pedido, error)
	// FindPagadosSinSesion returns paid orders never stamped with a session
	// (orphans), optionally bounded by payment date.
	FindPagadosSinSesion(ctx context.Context, rango *RangoFechas) ([]model.Pedido, error)
	AsignarSesion(ctx context.Context, pedidoID, sesionID uuid.UUID) error
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pedidoRepo) FindBySesionHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Pedido, error) {
	var pedidos []model.Pedido
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND (fecha_pago IS NULL OR fecha_pago <= ?)", sesionID, hasta).
		Order("created_at ASC").
		Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) FindPagadosSinSesion(ctx context.Context, rango *RangoFechas) ([]model.Pedido, error) {
	q := r.db.WithContext(ctx).
		Where("sesion_caja_id IS NULL AND estado = ?", model.PedidoPagado)
	if rango != nil {
		q = q.Where("fecha_pago >= ? AND fecha_pago <= ?", rango.Desde, rango.Hasta)
	}
	var pedidos []model.Pedido
	err := q.Order("fecha_pago ASC").Find(&pedidos).Error
	return pedidos, err
}

func (r *pedidoRepo) AsignarSesion(ctx context.Context, pedidoID, sesionID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Pedido{}).
		Where("id = ?", pedidoID).
		Update("sesion_caja_id", sesionID).Error
}
