package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FacturaCompra is a supplier purchase invoice. Invoices paid from the drawer
// (PagadoDesdeCaja) reduce the expected cash of the session they were paid
// in; invoices settled by bank transfer never touch the drawer.
type FacturaCompra struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Numero          string          `gorm:"type:varchar(40)"`
	Proveedor       string          `gorm:"not null"`
	Total           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SesionCajaID    *uuid.UUID      `gorm:"type:uuid;index"`
	MetodoPago      string          `gorm:"type:varchar(20)"`
	PagadoDesdeCaja bool            `gorm:"not null;default:false"`
	Fecha           time.Time
}

func (FacturaCompra) TableName() string { return "facturas_compra" }
