package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Gasto is an expense registered against a session.
// Only expenses paid from the drawer (PagadoDesdeCaja) reduce the expected
// cash; the rest are tracked for reporting.
type Gasto struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Monto           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	SesionCajaID    *uuid.UUID      `gorm:"type:uuid;index"`
	MetodoPago      string          `gorm:"type:varchar(20)"`
	PagadoDesdeCaja bool            `gorm:"not null;default:false"`
	Tipo            string          `gorm:"type:varchar(40)"`
	Descripcion     string
	CreatedAt       time.Time
}

func (Gasto) TableName() string { return "gastos" }
