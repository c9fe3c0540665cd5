package dto

import (
	"time"

	"cajacore/internal/model"

	"github.com/shopspring/decimal"
)

type AbrirSesionRequest struct {
	Nombre                 string                     `json:"nombre" validate:"required,min=2,max=120"`
	Responsable            string                     `json:"responsable" validate:"required,min=2,max=120"`
	FondoInicial           decimal.Decimal            `json:"fondo_inicial" validate:"min=0"`
	FondoInicialDesglosado map[string]decimal.Decimal `json:"fondo_inicial_desglosado,omitempty"`
}

type CerrarSesionRequest struct {
	EfectivoDeclaradoDesglosado map[string]decimal.Decimal `json:"efectivo_declarado_desglosado" validate:"required"`
	Observaciones               string                     `json:"observaciones,omitempty" validate:"max=500"`
}

type RevisionRequest struct {
	Aprobador string `json:"aprobador" validate:"required,min=2,max=120"`
	Motivo    string `json:"motivo,omitempty" validate:"max=500"`
}

type MigrarHuerfanosRequest struct {
	Desde *time.Time `json:"desde,omitempty"`
	Hasta *time.Time `json:"hasta,omitempty"`
}

type MigracionResponse struct {
	Migrados     int             `json:"migrados"`
	TotalMigrado decimal.Decimal `json:"total_migrado"`
}

type SesionResponse struct {
	ID                     string          `json:"id"`
	Nombre                 string          `json:"nombre"`
	Responsable            string          `json:"responsable"`
	FondoInicial           decimal.Decimal `json:"fondo_inicial"`
	FondoInicialDesglosado model.Desglose  `json:"fondo_inicial_desglosado"`

	TotalVentas        decimal.Decimal `json:"total_ventas"`
	VentasDesglosadas  model.Desglose  `json:"ventas_desglosadas,omitempty"`
	TotalPropinas      decimal.Decimal `json:"total_propinas"`
	TotalGastos        decimal.Decimal `json:"total_gastos"`
	GastosDesglosados  model.Desglose  `json:"gastos_desglosados,omitempty"`
	TotalCompras       decimal.Decimal `json:"total_compras"`
	ComprasDesglosadas model.Desglose  `json:"compras_desglosadas,omitempty"`
	TotalAnulados      decimal.Decimal `json:"total_anulados"`
	CantidadAnulados   int             `json:"cantidad_anulados"`

	EfectivoEsperado  *decimal.Decimal `json:"efectivo_esperado,omitempty"`
	EfectivoDeclarado *decimal.Decimal `json:"efectivo_declarado,omitempty"`
	Diferencia        *decimal.Decimal `json:"diferencia,omitempty"`
	Tolerancia        decimal.Decimal  `json:"tolerancia"`
	Cuadrado          *bool            `json:"cuadrado,omitempty"`

	Cerrada bool   `json:"cerrada"`
	Estado  string `json:"estado"`

	Observaciones   *string `json:"observaciones,omitempty"`
	AprobadoPor     *string `json:"aprobado_por,omitempty"`
	FechaAprobacion *string `json:"fecha_aprobacion,omitempty"`
	URLComprobante  *string `json:"url_comprobante,omitempty"`

	FechaApertura string  `json:"fecha_apertura"`
	FechaCierre   *string `json:"fecha_cierre,omitempty"`
}

type SesionListResponse struct {
	Data  []SesionResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

const fechaFmt = "2006-01-02T15:04:05Z"

// SesionToResponse maps the stored session onto the API shape.
func SesionToResponse(s *model.SesionCaja) *SesionResponse {
	resp := &SesionResponse{
		ID:                     s.ID.String(),
		Nombre:                 s.Nombre,
		Responsable:            s.Responsable,
		FondoInicial:           s.FondoInicial,
		FondoInicialDesglosado: s.FondoInicialDesglosado,
		TotalVentas:            s.TotalVentas,
		VentasDesglosadas:      s.VentasDesglosadas,
		TotalPropinas:          s.TotalPropinas,
		TotalGastos:            s.TotalGastos,
		GastosDesglosados:      s.GastosDesglosados,
		TotalCompras:           s.TotalCompras,
		ComprasDesglosadas:     s.ComprasDesglosadas,
		TotalAnulados:          s.TotalAnulados,
		CantidadAnulados:       s.CantidadAnulados,
		EfectivoEsperado:       s.EfectivoEsperado,
		EfectivoDeclarado:      s.EfectivoDeclarado,
		Diferencia:             s.Diferencia,
		Tolerancia:             s.Tolerancia,
		Cuadrado:               s.Cuadrado,
		Cerrada:                s.Cerrada,
		Estado:                 s.Estado,
		Observaciones:          s.Observaciones,
		AprobadoPor:            s.AprobadoPor,
		URLComprobante:         s.URLComprobante,
		FechaApertura:          s.FechaApertura.Format(fechaFmt),
	}
	if s.FechaCierre != nil {
		t := s.FechaCierre.Format(fechaFmt)
		resp.FechaCierre = &t
	}
	if s.FechaAprobacion != nil {
		t := s.FechaAprobacion.Format(fechaFmt)
		resp.FechaAprobacion = &t
	}
	return resp
}
