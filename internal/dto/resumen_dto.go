package dto

import (
	"time"

	"cajacore/internal/model"

	"github.com/shopspring/decimal"
)

// ResumenCierre is the closing summary of a session. It is derived on demand
// from the ledger sources; only the close operation persists its figures.
type ResumenCierre struct {
	SesionID string `json:"sesion_id"`

	VentasPorMetodo   model.Desglose  `json:"ventas_por_metodo"`
	CantidadPorMetodo map[string]int  `json:"cantidad_por_metodo"`
	TotalVentas       decimal.Decimal `json:"total_ventas"`
	TotalPropinas     decimal.Decimal `json:"total_propinas"`

	TotalAnulados    decimal.Decimal `json:"total_anulados"`
	CantidadAnulados int             `json:"cantidad_anulados"`
	CantidadSinCargo int             `json:"cantidad_sin_cargo"`

	GastosPorMetodo  model.Desglose  `json:"gastos_por_metodo"`
	TotalGastos      decimal.Decimal `json:"total_gastos"`
	ComprasPorMetodo model.Desglose  `json:"compras_por_metodo"`
	TotalCompras     decimal.Decimal `json:"total_compras"`

	EfectivoEsperado decimal.Decimal `json:"efectivo_esperado"`
	CalculadoEn      time.Time       `json:"calculado_en"`
}
