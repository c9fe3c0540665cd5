package service

import (
	"context"
	"errors"
	"time"

	"cajacore/internal/dto"
	"cajacore/internal/model"
	"cajacore/internal/repository"
	"cajacore/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SesionService interface {
	Abrir(ctx context.Context, req dto.AbrirSesionRequest) (*dto.SesionResponse, error)
	ObtenerActiva(ctx context.Context) (*dto.SesionResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error)
	Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error)
	Resumen(ctx context.Context, id uuid.UUID) (*dto.ResumenCierre, error)
	// AsignarPedidoASesionActiva stamps a paid order with the open session id.
	// Returns false when no session is open; the caller decides whether that
	// is fatal. Idempotent for orders already stamped.
	AsignarPedidoASesionActiva(ctx context.Context, pedidoID uuid.UUID) (bool, error)
	MigrarPedidosHuerfanos(ctx context.Context, sesionID uuid.UUID, rango *repository.RangoFechas) (*dto.MigracionResponse, error)
	Cerrar(ctx context.Context, id uuid.UUID, req dto.CerrarSesionRequest) (*dto.SesionResponse, error)
	Aprobar(ctx context.Context, id uuid.UUID, aprobador string) (*dto.SesionResponse, error)
	Rechazar(ctx context.Context, id uuid.UUID, aprobador, motivo string) (*dto.SesionResponse, error)
}

type sesionService struct {
	repo          repository.SesionRepository
	pedidos       repository.PedidoRepository
	resumen       ResumenService
	dispatcher    *worker.Dispatcher
	db            *gorm.DB
	tolerancia    decimal.Decimal
	cierreTimeout time.Duration
}

func NewSesionService(
	repo repository.SesionRepository,
	pedidos repository.PedidoRepository,
	resumen ResumenService,
	dispatcher *worker.Dispatcher,
	db *gorm.DB,
	tolerancia decimal.Decimal,
	cierreTimeout time.Duration,
) SesionService {
	if cierreTimeout <= 0 {
		cierreTimeout = 30 * time.Second
	}
	return &sesionService{
		repo:          repo,
		pedidos:       pedidos,
		resumen:       resumen,
		dispatcher:    dispatcher,
		db:            db,
		tolerancia:    tolerancia,
		cierreTimeout: cierreTimeout,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Abrir ─────────────────────────────────────────────────────────────────────

func (s *sesionService) Abrir(ctx context.Context, req dto.AbrirSesionRequest) (*dto.SesionResponse, error) {
	if req.Responsable == "" {
		return nil, &ValidationError{Campo: "responsable", Motivo: "es obligatorio"}
	}
	if req.FondoInicial.IsNegative() {
		return nil, &ValidationError{Campo: "fondo_inicial", Motivo: "no puede ser negativo"}
	}

	fondo := req.FondoInicial
	desglose := model.Desglose{}
	if len(req.FondoInicialDesglosado) == 0 {
		// Unspecified breakdown means the whole float is cash.
		desglose[model.MetodoEfectivo] = fondo
	} else {
		for metodo, monto := range req.FondoInicialDesglosado {
			if monto.IsNegative() {
				return nil, &ValidationError{Campo: "fondo_inicial_desglosado", Motivo: "monto negativo en " + metodo}
			}
			desglose.Sumar(model.NormalizarMetodo(metodo), monto)
		}
		fondo = desglose.Total()
	}

	// Pre-flight check so the conflict carries the open session's id. The
	// partial unique index is the real guard against a concurrent open.
	if abierta, err := s.repo.FindAbierta(ctx); err != nil {
		return nil, err
	} else if abierta != nil {
		return nil, &ConflictError{Motivo: "ya existe una sesión de caja abierta", SesionID: abierta.ID}
	}

	sesion := &model.SesionCaja{
		Nombre:                 req.Nombre,
		Responsable:            req.Responsable,
		FondoInicial:           fondo,
		FondoInicialDesglosado: desglose,
		Tolerancia:             s.tolerancia,
		Estado:                 model.EstadoAbierta,
		FechaApertura:          time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, sesion); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if abierta, ferr := s.repo.FindAbierta(ctx); ferr == nil && abierta != nil {
				return nil, &ConflictError{Motivo: "ya existe una sesión de caja abierta", SesionID: abierta.ID}
			}
			return nil, &ConflictError{Motivo: "ya existe una sesión de caja abierta"}
		}
		return nil, err
	}

	log.Info().Str("sesion_id", sesion.ID.String()).Str("responsable", sesion.Responsable).Msg("sesión de caja abierta")
	return dto.SesionToResponse(sesion), nil
}

// ── Consultas ─────────────────────────────────────────────────────────────────

func (s *sesionService) ObtenerActiva(ctx context.Context) (*dto.SesionResponse, error) {
	sesion, err := s.repo.FindAbierta(ctx)
	if err != nil {
		return nil, err
	}
	if sesion == nil {
		return nil, &NotFoundError{Motivo: "no hay sesión de caja abierta"}
	}
	return dto.SesionToResponse(sesion), nil
}

func (s *sesionService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.SesionResponse, error) {
	sesion, err := s.findSesion(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.SesionToResponse(sesion), nil
}

func (s *sesionService) Historial(ctx context.Context, page, limit int) ([]dto.SesionResponse, int64, error) {
	sesiones, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.SesionResponse, 0, len(sesiones))
	for i := range sesiones {
		items = append(items, *dto.SesionToResponse(&sesiones[i]))
	}
	return items, total, nil
}

// Resumen computes the live summary of a session without closing it. For a
// closed session it recomputes with the frozen close instant, which yields the
// persisted totals again.
func (s *sesionService) Resumen(ctx context.Context, id uuid.UUID) (*dto.ResumenCierre, error) {
	sesion, err := s.findSesion(ctx, id)
	if err != nil {
		return nil, err
	}
	asOf := time.Now().UTC()
	if sesion.FechaCierre != nil {
		asOf = *sesion.FechaCierre
	}
	return s.resumen.CalcularResumen(ctx, sesion, asOf)
}

// ── AsignarPedidoASesionActiva ────────────────────────────────────────────────

func (s *sesionService) AsignarPedidoASesionActiva(ctx context.Context, pedidoID uuid.UUID) (bool, error) {
	sesion, err := s.repo.FindAbierta(ctx)
	if err != nil {
		return false, err
	}
	if sesion == nil {
		return false, nil
	}

	pedido, err := s.pedidos.FindByID(ctx, pedidoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, &NotFoundError{Motivo: "pedido no encontrado"}
		}
		return false, err
	}
	if pedido.SesionCajaID != nil {
		return true, nil
	}
	if err := s.pedidos.AsignarSesion(ctx, pedidoID, sesion.ID); err != nil {
		return false, err
	}
	return true, nil
}

// ── MigrarPedidosHuerfanos ────────────────────────────────────────────────────

func (s *sesionService) MigrarPedidosHuerfanos(ctx context.Context, sesionID uuid.UUID, rango *repository.RangoFechas) (*dto.MigracionResponse, error) {
	sesion, err := s.findSesion(ctx, sesionID)
	if err != nil {
		return nil, err
	}
	if sesion.Cerrada {
		return nil, &ConflictError{Motivo: "no se puede migrar a una sesión cerrada", SesionID: sesion.ID}
	}

	huerfanos, err := s.pedidos.FindPagadosSinSesion(ctx, rango)
	if err != nil {
		return nil, err
	}

	resp := &dto.MigracionResponse{}
	for i := range huerfanos {
		if err := s.pedidos.AsignarSesion(ctx, huerfanos[i].ID, sesion.ID); err != nil {
			return nil, err
		}
		resp.Migrados++
		resp.TotalMigrado = resp.TotalMigrado.Add(huerfanos[i].MontoVenta())
	}

	if resp.Migrados > 0 {
		log.Info().
			Str("sesion_id", sesion.ID.String()).
			Int("migrados", resp.Migrados).
			Str("total", resp.TotalMigrado.StringFixed(2)).
			Msg("pedidos huérfanos migrados")
	}
	return resp, nil
}

// ── Cerrar ────────────────────────────────────────────────────────────────────
// Freezes the aggregated totals onto the session record. The asOf snapshot is
// taken first: orders whose payment lands after it belong to the next session
// (migrate-orphans is the repair path). Aggregation is bounded by the
// configured timeout, and the write is a single transaction so a failure never
// leaves the session half-closed.

func (s *sesionService) Cerrar(ctx context.Context, id uuid.UUID, req dto.CerrarSesionRequest) (*dto.SesionResponse, error) {
	sesion, err := s.findSesion(ctx, id)
	if err != nil {
		return nil, err
	}
	if sesion.Cerrada {
		return nil, &ConflictError{Motivo: "la sesión ya está cerrada", SesionID: sesion.ID}
	}

	asOf := time.Now().UTC()
	aggCtx, cancel := context.WithTimeout(ctx, s.cierreTimeout)
	defer cancel()

	resumen, err := s.resumen.CalcularResumen(aggCtx, sesion, asOf)
	if err != nil {
		return nil, err
	}

	declarado := decimal.Zero
	for metodo, monto := range req.EfectivoDeclaradoDesglosado {
		if monto.IsNegative() {
			return nil, &ValidationError{Campo: "efectivo_declarado_desglosado", Motivo: "monto negativo en " + metodo}
		}
		declarado = declarado.Add(monto)
	}

	esperado := resumen.EfectivoEsperado
	diferencia := esperado.Sub(declarado)
	cuadrado := diferencia.Abs().LessThanOrEqual(sesion.Tolerancia)

	sesion.TotalVentas = resumen.TotalVentas
	sesion.VentasDesglosadas = resumen.VentasPorMetodo
	sesion.TotalPropinas = resumen.TotalPropinas
	sesion.TotalGastos = resumen.TotalGastos
	sesion.GastosDesglosados = resumen.GastosPorMetodo
	sesion.TotalCompras = resumen.TotalCompras
	sesion.ComprasDesglosadas = resumen.ComprasPorMetodo
	sesion.TotalAnulados = resumen.TotalAnulados
	sesion.CantidadAnulados = resumen.CantidadAnulados
	sesion.EfectivoEsperado = &esperado
	sesion.EfectivoDeclarado = &declarado
	sesion.Diferencia = &diferencia
	sesion.Cuadrado = &cuadrado
	sesion.Cerrada = true
	sesion.Estado = model.EstadoPendienteRevision
	sesion.FechaCierre = &asOf
	if req.Observaciones != "" {
		obs := req.Observaciones
		sesion.Observaciones = &obs
	}

	if err := runTx(ctx, s.db, func(tx *gorm.DB) error {
		return s.repo.UpdateTx(tx, sesion)
	}); err != nil {
		return nil, err
	}

	log.Info().
		Str("sesion_id", sesion.ID.String()).
		Str("esperado", esperado.StringFixed(2)).
		Str("declarado", declarado.StringFixed(2)).
		Str("diferencia", diferencia.StringFixed(2)).
		Bool("cuadrado", cuadrado).
		Msg("sesión de caja cerrada")

	// Best-effort: the closing report is rendered and mailed asynchronously.
	if s.dispatcher != nil {
		payload := worker.CierreJobPayload{SesionID: sesion.ID.String()}
		if err := s.dispatcher.EnqueueCierre(ctx, payload); err != nil {
			log.Warn().Err(err).Str("sesion_id", sesion.ID.String()).Msg("no se pudo encolar el reporte de cierre")
		}
	}

	return dto.SesionToResponse(sesion), nil
}

// ── Aprobar / Rechazar ────────────────────────────────────────────────────────

func (s *sesionService) Aprobar(ctx context.Context, id uuid.UUID, aprobador string) (*dto.SesionResponse, error) {
	sesion, err := s.findSesion(ctx, id)
	if err != nil {
		return nil, err
	}
	if sesion.Estado != model.EstadoPendienteRevision {
		return nil, &ConflictError{Motivo: "la sesión no está pendiente de revisión", SesionID: sesion.ID}
	}

	now := time.Now().UTC()
	sesion.Estado = model.EstadoAprobada
	sesion.AprobadoPor = &aprobador
	sesion.FechaAprobacion = &now

	if err := s.repo.Update(ctx, sesion); err != nil {
		return nil, err
	}
	log.Info().Str("sesion_id", sesion.ID.String()).Str("aprobador", aprobador).Msg("sesión aprobada")
	return dto.SesionToResponse(sesion), nil
}

func (s *sesionService) Rechazar(ctx context.Context, id uuid.UUID, aprobador, motivo string) (*dto.SesionResponse, error) {
	if motivo == "" {
		return nil, &ValidationError{Campo: "motivo", Motivo: "es obligatorio al rechazar"}
	}
	sesion, err := s.findSesion(ctx, id)
	if err != nil {
		return nil, err
	}
	if sesion.Estado != model.EstadoPendienteRevision {
		return nil, &ConflictError{Motivo: "la sesión no está pendiente de revisión", SesionID: sesion.ID}
	}

	// Rejection is terminal: the session stays closed and flagged for audit.
	obs := "RECHAZADO: " + motivo
	if sesion.Observaciones != nil && *sesion.Observaciones != "" {
		obs = *sesion.Observaciones + " | " + obs
	}
	now := time.Now().UTC()
	sesion.Estado = model.EstadoRechazada
	sesion.Observaciones = &obs
	sesion.AprobadoPor = &aprobador
	sesion.FechaAprobacion = &now

	if err := s.repo.Update(ctx, sesion); err != nil {
		return nil, err
	}
	log.Warn().Str("sesion_id", sesion.ID.String()).Str("motivo", motivo).Msg("sesión rechazada")
	return dto.SesionToResponse(sesion), nil
}

func (s *sesionService) findSesion(ctx context.Context, id uuid.UUID) (*model.SesionCaja, error) {
	sesion, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Motivo: "sesión de caja no encontrada"}
		}
		return nil, err
	}
	return sesion, nil
}
