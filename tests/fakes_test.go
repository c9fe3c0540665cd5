package tests

import (
	"context"
	"sort"
	"time"

	"cajacore/internal/model"
	"cajacore/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ── In-memory SesionRepository ────────────────────────────────────────────────

type memSesionRepo struct {
	sesiones map[uuid.UUID]*model.SesionCaja
}

func newMemSesionRepo() *memSesionRepo {
	return &memSesionRepo{sesiones: make(map[uuid.UUID]*model.SesionCaja)}
}

func (r *memSesionRepo) Create(_ context.Context, s *model.SesionCaja) error {
	for _, existing := range r.sesiones {
		if !existing.Cerrada {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *memSesionRepo) FindByID(_ context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	s, ok := r.sesiones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSesionRepo) FindAbierta(_ context.Context) (*model.SesionCaja, error) {
	for _, s := range r.sesiones {
		if !s.Cerrada {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memSesionRepo) Update(_ context.Context, s *model.SesionCaja) error {
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *memSesionRepo) UpdateTx(_ *gorm.DB, s *model.SesionCaja) error {
	cp := *s
	r.sesiones[s.ID] = &cp
	return nil
}

func (r *memSesionRepo) List(_ context.Context, page, limit int) ([]model.SesionCaja, int64, error) {
	all := make([]model.SesionCaja, 0, len(r.sesiones))
	for _, s := range r.sesiones {
		all = append(all, *s)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].FechaApertura.After(all[j].FechaApertura) })
	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *memSesionRepo) FindByAperturaEntre(_ context.Context, rango repository.RangoFechas) ([]model.SesionCaja, error) {
	var result []model.SesionCaja
	for _, s := range r.sesiones {
		if !s.FechaApertura.Before(rango.Desde) && !s.FechaApertura.After(rango.Hasta) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].FechaApertura.Before(result[j].FechaApertura) })
	return result, nil
}

var _ repository.SesionRepository = (*memSesionRepo)(nil)

// ── In-memory PedidoRepository ────────────────────────────────────────────────

type memPedidoRepo struct {
	pedidos map[uuid.UUID]*model.Pedido
}

func newMemPedidoRepo() *memPedidoRepo {
	return &memPedidoRepo{pedidos: make(map[uuid.UUID]*model.Pedido)}
}

func (r *memPedidoRepo) add(p model.Pedido) uuid.UUID {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.pedidos[p.ID] = &p
	return p.ID
}

func (r *memPedidoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Pedido, error) {
	p, ok := r.pedidos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memPedidoRepo) FindBySesionHasta(_ context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Pedido, error) {
	var result []model.Pedido
	for _, p := range r.pedidos {
		if p.SesionCajaID == nil || *p.SesionCajaID != sesionID {
			continue
		}
		if p.FechaPago != nil && p.FechaPago.After(hasta) {
			continue
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *memPedidoRepo) FindPagadosSinSesion(_ context.Context, rango *repository.RangoFechas) ([]model.Pedido, error) {
	var result []model.Pedido
	for _, p := range r.pedidos {
		if p.SesionCajaID != nil || p.Estado != model.PedidoPagado {
			continue
		}
		if rango != nil && p.FechaPago != nil {
			if p.FechaPago.Before(rango.Desde) || p.FechaPago.After(rango.Hasta) {
				continue
			}
		}
		result = append(result, *p)
	}
	return result, nil
}

func (r *memPedidoRepo) AsignarSesion(_ context.Context, pedidoID, sesionID uuid.UUID) error {
	p, ok := r.pedidos[pedidoID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sid := sesionID
	p.SesionCajaID = &sid
	return nil
}

var _ repository.PedidoRepository = (*memPedidoRepo)(nil)

// ── In-memory GastoRepository ─────────────────────────────────────────────────

type memGastoRepo struct {
	gastos []model.Gasto
}

func (r *memGastoRepo) FindBySesionHasta(_ context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.Gasto, error) {
	var result []model.Gasto
	for _, g := range r.gastos {
		if g.SesionCajaID != nil && *g.SesionCajaID == sesionID && !g.CreatedAt.After(hasta) {
			result = append(result, g)
		}
	}
	return result, nil
}

var _ repository.GastoRepository = (*memGastoRepo)(nil)

// ── In-memory FacturaCompraRepository ─────────────────────────────────────────

type memFacturaRepo struct {
	facturas []model.FacturaCompra
}

func (r *memFacturaRepo) FindPagadasDesdeCajaHasta(_ context.Context, sesionID uuid.UUID, hasta time.Time) ([]model.FacturaCompra, error) {
	var result []model.FacturaCompra
	for _, f := range r.facturas {
		if f.SesionCajaID != nil && *f.SesionCajaID == sesionID && f.PagadoDesdeCaja && !f.Fecha.After(hasta) {
			result = append(result, f)
		}
	}
	return result, nil
}

var _ repository.FacturaCompraRepository = (*memFacturaRepo)(nil)

// ── In-memory UsuarioRepository ───────────────────────────────────────────────

type memUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newMemUsuarioRepo() *memUsuarioRepo {
	return &memUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *memUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *memUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsuarioRepo) List(_ context.Context) ([]model.Usuario, error) {
	var result []model.Usuario
	for _, u := range r.usuarios {
		if u.Activo {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (r *memUsuarioRepo) Update(_ context.Context, u *model.Usuario) error {
	cp := *u
	r.usuarios[u.ID] = &cp
	return nil
}

func (r *memUsuarioRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.usuarios[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Activo = false
	return nil
}

var _ repository.UsuarioRepository = (*memUsuarioRepo)(nil)
