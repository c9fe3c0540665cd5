package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Payment method buckets. Anything unrecognized lands in "otros".
const (
	MetodoEfectivo      = "efectivo"
	MetodoTarjeta       = "tarjeta"
	MetodoTransferencia = "transferencia"
	MetodoOtros         = "otros"
)

// NormalizarMetodo maps free-form payment method strings to a known bucket.
func NormalizarMetodo(metodo string) string {
	switch strings.ToLower(strings.TrimSpace(metodo)) {
	case MetodoEfectivo, "cash":
		return MetodoEfectivo
	case MetodoTarjeta, "debito", "credito", "tarjeta_debito", "tarjeta_credito":
		return MetodoTarjeta
	case MetodoTransferencia, "qr":
		return MetodoTransferencia
	default:
		return MetodoOtros
	}
}

// Desglose is an amount breakdown keyed by payment method, persisted as JSON.
type Desglose map[string]decimal.Decimal

// Get returns the amount for a method, zero when absent or the map is nil.
func (d Desglose) Get(metodo string) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return d[metodo]
}

// Sumar adds monto to the method's bucket. The map must be initialized.
func (d Desglose) Sumar(metodo string, monto decimal.Decimal) {
	d[metodo] = d[metodo].Add(monto)
}

// Total sums every bucket.
func (d Desglose) Total() decimal.Decimal {
	total := decimal.Zero
	for _, monto := range d {
		total = total.Add(monto)
	}
	return total
}
