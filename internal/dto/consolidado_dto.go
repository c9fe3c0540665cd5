package dto

import (
	"time"

	"cajacore/internal/model"

	"github.com/shopspring/decimal"
)

type ConsolidadoSesion struct {
	ID               string          `json:"id"`
	Nombre           string          `json:"nombre"`
	Responsable      string          `json:"responsable"`
	Estado           string          `json:"estado"`
	FechaApertura    time.Time       `json:"fecha_apertura"`
	TotalVentas      decimal.Decimal `json:"total_ventas"`
	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
}

// ConsolidadoResponse aggregates every session opened inside the range.
// Advertencias lists sessions that could not be summarized and were skipped.
type ConsolidadoResponse struct {
	Desde time.Time `json:"desde"`
	Hasta time.Time `json:"hasta"`

	CantidadSesiones int             `json:"cantidad_sesiones"`
	TotalVentas      decimal.Decimal `json:"total_ventas"`
	TotalPropinas    decimal.Decimal `json:"total_propinas"`
	TotalGastos      decimal.Decimal `json:"total_gastos"`
	TotalCompras     decimal.Decimal `json:"total_compras"`
	TotalAnulados    decimal.Decimal `json:"total_anulados"`
	CantidadAnulados int             `json:"cantidad_anulados"`

	MargenBruto            decimal.Decimal            `json:"margen_bruto"`
	PromedioVentaPorSesion decimal.Decimal            `json:"promedio_venta_por_sesion"`
	VentasPorMetodo        model.Desglose             `json:"ventas_por_metodo"`
	PorcentajePorMetodo    map[string]decimal.Decimal `json:"porcentaje_por_metodo"`

	Sesiones     []ConsolidadoSesion `json:"sesiones"`
	Advertencias []string            `json:"advertencias"`
}
