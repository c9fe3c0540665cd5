package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"cajacore/internal/dto"
	"cajacore/internal/model"
	"cajacore/internal/repository"
	"cajacore/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rangoUltimaSemana() repository.RangoFechas {
	ahora := time.Now().UTC()
	return repository.RangoFechas{Desde: ahora.Add(-7 * 24 * time.Hour), Hasta: ahora.Add(time.Hour)}
}

// cerrada builds a session through the normal open/close cycle so the
// consolidation reads realistic frozen data.
func (e *sesionEnv) cerrada(t *testing.T, fondo int64, ventasEfectivo []int64, ventasTarjeta []int64) uuid.UUID {
	t.Helper()
	id := e.abrir(t, fondo)
	for _, monto := range ventasEfectivo {
		e.pedidos.add(pagado(&id, monto, "efectivo"))
	}
	for _, monto := range ventasTarjeta {
		e.pedidos.add(pagado(&id, monto, "tarjeta"))
	}
	_, err := e.svc.Cerrar(context.Background(), id, dto.CerrarSesionRequest{
		EfectivoDeclaradoDesglosado: map[string]decimal.Decimal{"efectivo": decimal.Zero},
	})
	require.NoError(t, err)
	return id
}

func TestConsolidadoRollup(t *testing.T) {
	e := newSesionEnv()
	consolidado := service.NewConsolidadoService(e.sesiones, e.resumen)

	e.cerrada(t, 10000, []int64{30000, 20000}, nil)
	id2 := e.cerrada(t, 5000, []int64{10000}, []int64{40000})

	// A drawer-paid purchase on the second session.
	e.facturas.facturas = append(e.facturas.facturas, model.FacturaCompra{
		ID:              uuid.New(),
		Proveedor:       "Carnes del Sur",
		Total:           decimal.NewFromInt(15000),
		SesionCajaID:    &id2,
		MetodoPago:      "efectivo",
		PagadoDesdeCaja: true,
		Fecha:           time.Now().UTC().Add(-time.Minute),
	})

	resp, err := consolidado.Consolidar(context.Background(), rangoUltimaSemana())
	require.NoError(t, err)

	assert.Equal(t, 2, resp.CantidadSesiones)
	assert.Len(t, resp.Sesiones, 2)
	assert.Empty(t, resp.Advertencias)
	assert.True(t, resp.TotalVentas.Equal(decimal.NewFromInt(100000)))
	assert.True(t, resp.TotalCompras.Equal(decimal.NewFromInt(15000)))
	assert.True(t, resp.MargenBruto.Equal(decimal.NewFromInt(85000)))
	assert.True(t, resp.PromedioVentaPorSesion.Equal(decimal.NewFromInt(50000)))
	assert.True(t, resp.VentasPorMetodo.Get(model.MetodoEfectivo).Equal(decimal.NewFromInt(60000)))
	assert.True(t, resp.VentasPorMetodo.Get(model.MetodoTarjeta).Equal(decimal.NewFromInt(40000)))
	assert.True(t, resp.PorcentajePorMetodo[model.MetodoEfectivo].Equal(decimal.NewFromInt(60)))
	assert.True(t, resp.PorcentajePorMetodo[model.MetodoTarjeta].Equal(decimal.NewFromInt(40)))
}

func TestConsolidadoVacio(t *testing.T) {
	e := newSesionEnv()
	consolidado := service.NewConsolidadoService(e.sesiones, e.resumen)

	resp, err := consolidado.Consolidar(context.Background(), rangoUltimaSemana())
	require.NoError(t, err)

	assert.Equal(t, 0, resp.CantidadSesiones)
	assert.True(t, resp.TotalVentas.IsZero())
	assert.True(t, resp.PromedioVentaPorSesion.IsZero())
	assert.Empty(t, resp.PorcentajePorMetodo)
}

func TestConsolidadoFiltraPorRango(t *testing.T) {
	e := newSesionEnv()
	consolidado := service.NewConsolidadoService(e.sesiones, e.resumen)

	e.cerrada(t, 0, []int64{5000}, nil)

	fueraDeRango := time.Now().UTC().Add(-30 * 24 * time.Hour)
	resp, err := consolidado.Consolidar(context.Background(), repository.RangoFechas{
		Desde: fueraDeRango.Add(-24 * time.Hour),
		Hasta: fueraDeRango,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.CantidadSesiones)
}

// resumenConFalla fails for one specific session, for exercising the
// skip-and-warn path.
type resumenConFalla struct {
	inner service.ResumenService
	falla uuid.UUID
}

func (r *resumenConFalla) CalcularResumen(ctx context.Context, sesion *model.SesionCaja, asOf time.Time) (*dto.ResumenCierre, error) {
	if sesion.ID == r.falla {
		return nil, errors.New("fuente de pedidos no disponible")
	}
	return r.inner.CalcularResumen(ctx, sesion, asOf)
}

func TestConsolidadoSesionOmitida(t *testing.T) {
	e := newSesionEnv()

	rota := e.cerrada(t, 0, []int64{1000}, nil)
	e.cerrada(t, 0, []int64{2000}, nil)

	consolidado := service.NewConsolidadoService(e.sesiones, &resumenConFalla{inner: e.resumen, falla: rota})

	resp, err := consolidado.Consolidar(context.Background(), rangoUltimaSemana())
	require.NoError(t, err)

	assert.Equal(t, 1, resp.CantidadSesiones)
	assert.True(t, resp.TotalVentas.Equal(decimal.NewFromInt(2000)))
	require.Len(t, resp.Advertencias, 1)
	assert.Contains(t, resp.Advertencias[0], rota.String())
}
