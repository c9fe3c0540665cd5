package repository

import (
	"context"
	"time"

	"cajacore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GastoRepository is the read-only surface over the expense subsystem.
type GastoRepository interface {
	FindBySesionHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Gasto, error)
}

type gastoRepo struct{ db *gorm.DB }

func NewGastoRepository(db *gorm.DB) GastoRepository { return &gastoRepo{db: db} }

func (r *gastoRepo) FindBySesionHasta(ctx context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Gasto, error) {
	var gastos []model.Gasto
	err := r.db.WithContext(ctx).
		Where("sesion_caja_id = ? AND created_at <= ?", sesionID, hasta).
		Order("created_at ASC").
		Find(&gastos).Error
	return gastos, err
}
