package service

import (
	"context"
	"fmt"
	"time"

	"cajacore/internal/dto"
	"cajacore/internal/model"
	"cajacore/internal/repository"

	"github.com/shopspring/decimal"
)

// ResumenService computes the closing summary of a session: sales, tips,
// expenses and purchases grouped by payment method, plus the cash that should
// be in the drawer. It is a pure read over the ledger sources: calling it
// twice with the same asOf yields the same result.
type ResumenService interface {
	CalcularResumen(ctx context.Context, sesion *model.SesionCaja, asOf time.Time) (*dto.ResumenCierre, error)
}

type resumenService struct {
	pedidos  repository.PedidoRepository
	gastos   repository.GastoRepository
	facturas repository.FacturaCompraRepository
}

func NewResumenService(
	pedidos repository.PedidoRepository,
	gastos repository.GastoRepository,
	facturas repository.FacturaCompraRepository,
) ResumenService {
	return &resumenService{pedidos: pedidos, gastos: gastos, facturas: facturas}
}

func (s *resumenService) CalcularResumen(ctx context.Context, sesion *model.SesionCaja, asOf time.Time) (*dto.ResumenCierre, error) {
	pedidos, err := s.pedidos.FindBySesionHasta(ctx, sesion.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("pedidos de la sesión: %w", err)
	}

	resumen := &dto.ResumenCierre{
		SesionID:          sesion.ID.String(),
		VentasPorMetodo:   model.Desglose{},
		CantidadPorMetodo: map[string]int{},
		GastosPorMetodo:   model.Desglose{},
		ComprasPorMetodo:  model.Desglose{},
		CalculadoEn:       asOf,
	}

	for _, p := range pedidos {
		switch p.Estado {
		case model.PedidoPagado:
			metodo := model.NormalizarMetodo(p.MetodoPago)
			resumen.VentasPorMetodo.Sumar(metodo, p.MontoVenta())
			resumen.CantidadPorMetodo[metodo]++
			resumen.TotalPropinas = resumen.TotalPropinas.Add(p.Propina)
		case model.PedidoCancelado:
			// Cancelled orders never count as sales, even when they were paid
			// first. They are tracked apart for audit.
			resumen.TotalAnulados = resumen.TotalAnulados.Add(p.MontoVenta())
			resumen.CantidadAnulados++
		case model.PedidoCortesia, model.PedidoConsumoInterno:
			resumen.CantidadSinCargo++
		}
	}
	resumen.TotalVentas = resumen.VentasPorMetodo.Total()

	gastos, err := s.gastos.FindBySesionHasta(ctx, sesion.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("gastos de la sesión: %w", err)
	}
	gastosEfectivoCaja := decimal.Zero
	for _, g := range gastos {
		metodo := model.NormalizarMetodo(g.MetodoPago)
		resumen.GastosPorMetodo.Sumar(metodo, g.Monto)
		if g.PagadoDesdeCaja && metodo == model.MetodoEfectivo {
			gastosEfectivoCaja = gastosEfectivoCaja.Add(g.Monto)
		}
	}
	resumen.TotalGastos = resumen.GastosPorMetodo.Total()

	facturas, err := s.facturas.FindPagadasDesdeCajaHasta(ctx, sesion.ID, asOf)
	if err != nil {
		return nil, fmt.Errorf("facturas de compra de la sesión: %w", err)
	}
	for _, f := range facturas {
		// Repository already filters pagado_desde_caja; drawer-paid purchases
		// always hit the cash bucket.
		resumen.ComprasPorMetodo.Sumar(model.MetodoEfectivo, f.Total)
	}
	resumen.TotalCompras = resumen.ComprasPorMetodo.Total()

	resumen.EfectivoEsperado = sesion.FondoInicialDesglosado.Get(model.MetodoEfectivo).
		Add(resumen.VentasPorMetodo.Get(model.MetodoEfectivo)).
		Sub(gastosEfectivoCaja).
		Sub(resumen.ComprasPorMetodo.Get(model.MetodoEfectivo))

	return resumen, nil
}
