package repository

import (
	"context"
	"errors"
	"time"

	"cajacore/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RangoFechas bounds a query by date. Both ends are inclusive.
type RangoFechas struct {
	Desde time.Time
	Hasta time.Time
}

type SesionRepository interface {
	Create(ctx context.Context, s *model.SesionCaja) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error)
	// FindAbierta returns the single not-closed session, or (nil, nil) when
	// every session is closed. Backed by the partial unique index on cerrada.
	FindAbierta(ctx context.Context) (*model.SesionCaja, error)
	Update(ctx context.Context, s *model.SesionCaja) error
	// UpdateTx persists inside an existing transaction (nil tx = no-op DB,
	// used by unit tests).
	UpdateTx(tx *gorm.DB, s *model.SesionCaja) error
	List(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error)
	FindByAperturaEntre(ctx context.Context, rango RangoFechas) ([]model.SesionCaja, error)
}

type sesionRepo struct{ db *gorm.DB }

func NewSesionRepository(db *gorm.DB) SesionRepository { return &sesionRepo{db: db} }

func (r *sesionRepo) Create(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *sesionRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	var s model.SesionCaja
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sesionRepo) FindAbierta(ctx context.Context) (*model.SesionCaja, error) {
	var s model.SesionCaja
	err := r.db.WithContext(ctx).Where("cerrada = false").First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *sesionRepo) Update(ctx context.Context, s *model.SesionCaja) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *sesionRepo) UpdateTx(tx *gorm.DB, s *model.SesionCaja) error {
	if tx == nil {
		return nil
	}
	return tx.Save(s).Error
}

func (r *sesionRepo) List(ctx context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.SesionCaja{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var sesiones []model.SesionCaja
	err := r.db.WithContext(ctx).
		Order("fecha_apertura DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&sesiones).Error
	return sesiones, total, err
}

func (r *sesionRepo) FindByAperturaEntre(ctx context.Context, rango RangoFechas) ([]model.SesionCaja, error) {
	var sesiones []model.SesionCaja
	err := r.db.WithContext(ctx).
		Where("fecha_apertura >= ? AND fecha_apertura <= ?", rango.Desde, rango.Hasta).
		Order("fecha_apertura ASC").
		Find(&sesiones).Error
	return sesiones, err
}
