package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pedido states relevant to reconciliation.
// cortesia and consumo_interno have zero cash impact and are tracked for
// audit only.
const (
	PedidoPagado         = "pagado"
	PedidoCancelado      = "cancelado"
	PedidoCortesia       = "cortesia"
	PedidoConsumoInterno = "consumo_interno"
)

// Pedido is an order owned by the order subsystem. The reconciliation core
// only reads it and stamps SesionCajaID when a payment lands while a session
// is open. An order paid with no open session stays orphaned
// (SesionCajaID == nil) until a migration repairs it.
type Pedido struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Total        decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	TotalPagado  decimal.Decimal `gorm:"type:decimal(14,2)"`
	Propina      decimal.Decimal `gorm:"type:decimal(14,2)"`
	MetodoPago   string          `gorm:"type:varchar(20)"`
	Estado       string          `gorm:"type:varchar(20);not null;index"`
	SesionCajaID *uuid.UUID      `gorm:"type:uuid;index"`

	FechaPago        *time.Time
	FechaCancelacion *time.Time
	CreatedAt        time.Time
}

func (Pedido) TableName() string { return "pedidos" }

// MontoVenta is the amount a paid order contributes to sales:
// what was actually collected, falling back to the order total when the
// collected amount was never recorded.
func (p *Pedido) MontoVenta() decimal.Decimal {
	if p.TotalPagado.IsPositive() {
		return p.TotalPagado
	}
	return p.Total
}
