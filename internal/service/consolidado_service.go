package service

import (
	"context"
	"fmt"
	"time"

	"cajacore/internal/dto"
	"cajacore/internal/model"
	"cajacore/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ConsolidadoService rolls up every session opened inside a date range into
// consolidated statistics. A session that fails to summarize is skipped and
// reported in the warning list, never silently absorbed.
type ConsolidadoService interface {
	Consolidar(ctx context.Context, rango repository.RangoFechas) (*dto.ConsolidadoResponse, error)
}

type consolidadoService struct {
	repo    repository.SesionRepository
	resumen ResumenService
}

func NewConsolidadoService(repo repository.SesionRepository, resumen ResumenService) ConsolidadoService {
	return &consolidadoService{repo: repo, resumen: resumen}
}

func (s *consolidadoService) Consolidar(ctx context.Context, rango repository.RangoFechas) (*dto.ConsolidadoResponse, error) {
	sesiones, err := s.repo.FindByAperturaEntre(ctx, rango)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConsolidadoResponse{
		Desde:               rango.Desde,
		Hasta:               rango.Hasta,
		VentasPorMetodo:     model.Desglose{},
		PorcentajePorMetodo: map[string]decimal.Decimal{},
		Sesiones:            []dto.ConsolidadoSesion{},
		Advertencias:        []string{},
	}

	for i := range sesiones {
		sesion := &sesiones[i]

		asOf := time.Now().UTC()
		if sesion.FechaCierre != nil {
			asOf = *sesion.FechaCierre
		}
		resumen, rerr := s.resumen.CalcularResumen(ctx, sesion, asOf)
		if rerr != nil {
			log.Warn().Err(rerr).Str("sesion_id", sesion.ID.String()).Msg("consolidado: sesión omitida")
			resp.Advertencias = append(resp.Advertencias,
				fmt.Sprintf("sesión %s omitida: %v", sesion.ID, rerr))
			continue
		}

		resp.CantidadSesiones++
		resp.TotalVentas = resp.TotalVentas.Add(resumen.TotalVentas)
		resp.TotalPropinas = resp.TotalPropinas.Add(resumen.TotalPropinas)
		resp.TotalGastos = resp.TotalGastos.Add(resumen.TotalGastos)
		resp.TotalCompras = resp.TotalCompras.Add(resumen.TotalCompras)
		resp.TotalAnulados = resp.TotalAnulados.Add(resumen.TotalAnulados)
		resp.CantidadAnulados += resumen.CantidadAnulados
		for metodo, monto := range resumen.VentasPorMetodo {
			resp.VentasPorMetodo.Sumar(metodo, monto)
		}

		resp.Sesiones = append(resp.Sesiones, dto.ConsolidadoSesion{
			ID:               sesion.ID.String(),
			Nombre:           sesion.Nombre,
			Responsable:      sesion.Responsable,
			Estado:           sesion.Estado,
			FechaApertura:    sesion.FechaApertura,
			TotalVentas:      resumen.TotalVentas,
			EfectivoEsperado: resumen.EfectivoEsperado,
		})
	}

	resp.MargenBruto = resp.TotalVentas.Sub(resp.TotalCompras)
	if resp.CantidadSesiones > 0 {
		resp.PromedioVentaPorSesion = resp.TotalVentas.
			Div(decimal.NewFromInt(int64(resp.CantidadSesiones))).Round(2)
	}
	if !resp.TotalVentas.IsZero() {
		cien := decimal.NewFromInt(100)
		for metodo, monto := range resp.VentasPorMetodo {
			resp.PorcentajePorMetodo[metodo] = monto.Div(resp.TotalVentas).Mul(cien).Round(2)
		}
	}

	return resp, nil
}
