package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session review states. A session works in EstadoAbierta until closed, then
// waits for a supervisor decision. Rejection is a terminal audit flag and
// never reopens the session.
const (
	EstadoAbierta           = "abierta"
	EstadoPendienteRevision = "pendiente_revision"
	EstadoAprobada          = "aprobada"
	EstadoRechazada         = "rechazada"
)

// SesionCaja is one cash-register working period from open to close.
//
// Sales/expense/purchase totals are NOT maintained incrementally: they stay
// zero while the session is open (live figures come from the aggregation
// service) and are frozen onto the record exactly once, at close time.
// At most one row with cerrada = false exists system-wide, enforced by a
// partial unique index rather than application scans.
type SesionCaja struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre      string    `gorm:"not null"`
	Responsable string    `gorm:"not null"`

	FondoInicial           decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	FondoInicialDesglosado Desglose        `gorm:"serializer:json"`

	// Frozen at close.
	TotalVentas        decimal.Decimal `gorm:"type:decimal(14,2)"`
	VentasDesglosadas  Desglose        `gorm:"serializer:json"`
	TotalPropinas      decimal.Decimal `gorm:"type:decimal(14,2)"`
	TotalGastos        decimal.Decimal `gorm:"type:decimal(14,2)"`
	GastosDesglosados  Desglose        `gorm:"serializer:json"`
	TotalCompras       decimal.Decimal `gorm:"type:decimal(14,2)"`
	ComprasDesglosadas Desglose        `gorm:"serializer:json"`
	TotalAnulados      decimal.Decimal `gorm:"type:decimal(14,2)"`
	CantidadAnulados   int

	EfectivoEsperado  *decimal.Decimal `gorm:"type:decimal(14,2)"`
	EfectivoDeclarado *decimal.Decimal `gorm:"type:decimal(14,2)"`
	// Diferencia = esperado - declarado.
	Diferencia *decimal.Decimal `gorm:"type:decimal(14,2)"`
	Tolerancia decimal.Decimal  `gorm:"type:decimal(14,2)"`
	// Cuadrado: |diferencia| <= tolerancia.
	Cuadrado *bool

	Cerrada bool   `gorm:"not null;default:false"`
	Estado  string `gorm:"type:varchar(25);not null;default:'abierta'"`

	Observaciones   *string
	AprobadoPor     *string
	FechaAprobacion *time.Time
	// URLComprobante points at the closing-report PDF once the async cierre
	// job has generated it.
	URLComprobante *string

	FechaApertura time.Time
	FechaCierre   *time.Time
}

func (SesionCaja) TableName() string { return "sesiones_caja" }

// Abierta reports whether the session still accepts ledger events.
func (s *SesionCaja) Abierta() bool { return !s.Cerrada }
