package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"cajacore/internal/apierror"
	"cajacore/internal/dto"
	"cajacore/internal/middleware"
	"cajacore/internal/repository"
	"cajacore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type SesionesHandler struct {
	svc         service.SesionService
	consolidado service.ConsolidadoService
}

func NewSesionesHandler(svc service.SesionService, consolidado service.ConsolidadoService) *SesionesHandler {
	return &SesionesHandler{svc: svc, consolidado: consolidado}
}

// writeServiceError maps typed domain errors onto HTTP statuses. Anything
// unrecognized is a 500 with a safe message.
func writeServiceError(c *gin.Context, err error) {
	var conflict *service.ConflictError
	var notFound *service.NotFoundError
	var validation *service.ValidationError
	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusConflict, apierror.New(conflict.Error()))
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, apierror.New(notFound.Error()))
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity,
			apierror.NewValidation(map[string]string{validation.Campo: validation.Motivo}))
	default:
		log.Error().Str("request_id", c.GetString(middleware.RequestIDKey)).Err(err).Msg("unhandled service error")
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}

// Abrir godoc
// @Summary Abre una nueva sesion de caja
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body dto.AbrirSesionRequest true "Datos de apertura"
// @Success 201 {object} dto.SesionResponse
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/sesiones [post]
func (h *SesionesHandler) Abrir(c *gin.Context) {
	var req dto.AbrirSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Abrir(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// Listar godoc
// @Summary Historial paginado de sesiones de caja
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param page query int false "Pagina" default(1)
// @Param limit query int false "Tamano de pagina" default(20)
// @Success 200 {object} dto.SesionListResponse
// @Router /v1/sesiones [get]
func (h *SesionesHandler) Listar(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	items, total, err := h.svc.Historial(c.Request.Context(), page, limit)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SesionListResponse{Data: items, Total: total, Page: page, Limit: limit})
}

// ObtenerActiva godoc
// @Summary Devuelve la sesion de caja abierta
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/activa [get]
func (h *SesionesHandler) ObtenerActiva(c *gin.Context) {
	resp, err := h.svc.ObtenerActiva(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Consolidado godoc
// @Summary Estadisticas consolidadas de sesiones en un rango de fechas
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param desde query string false "Fecha inicial (YYYY-MM-DD)"
// @Param hasta query string false "Fecha final (YYYY-MM-DD)"
// @Success 200 {object} dto.ConsolidadoResponse
// @Failure 400 {object} apierror.APIError
// @Router /v1/sesiones/consolidado [get]
func (h *SesionesHandler) Consolidado(c *gin.Context) {
	hasta := time.Now().UTC()
	desde := hasta.AddDate(0, 0, -30)
	if q := c.Query("desde"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("desde inválido, formato YYYY-MM-DD"))
			return
		}
		desde = t
	}
	if q := c.Query("hasta"); q != "" {
		t, err := time.Parse("2006-01-02", q)
		if err != nil {
			c.JSON(http.StatusBadRequest, apierror.New("hasta inválido, formato YYYY-MM-DD"))
			return
		}
		// Inclusive end of day.
		hasta = t.Add(24*time.Hour - time.Nanosecond)
	}
	if hasta.Before(desde) {
		c.JSON(http.StatusBadRequest, apierror.New("hasta debe ser posterior a desde"))
		return
	}
	resp, err := h.consolidado.Consolidar(c.Request.Context(), repository.RangoFechas{Desde: desde, Hasta: hasta})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ObtenerPorID godoc
// @Summary Obtiene una sesion de caja por id
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id} [get]
func (h *SesionesHandler) ObtenerPorID(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Resumen godoc
// @Summary Resumen de cierre en vivo, sin cerrar la sesion
// @Tags sesiones
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Success 200 {object} dto.ResumenCierre
// @Failure 404 {object} apierror.APIError
// @Router /v1/sesiones/{id}/resumen [get]
func (h *SesionesHandler) Resumen(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.svc.Resumen(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Cerrar godoc
// @Summary Cierra la sesion y congela los totales
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.CerrarSesionRequest true "Efectivo declarado"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sesiones/{id}/cerrar [post]
func (h *SesionesHandler) Cerrar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.CerrarSesionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Cerrar(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Aprobar godoc
// @Summary Aprueba una sesion pendiente de revision
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.RevisionRequest true "Datos del revisor"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sesiones/{id}/aprobar [post]
func (h *SesionesHandler) Aprobar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.RevisionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Aprobar(c.Request.Context(), id, req.Aprobador)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Rechazar godoc
// @Summary Rechaza una sesion pendiente de revision
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion"
// @Param body body dto.RevisionRequest true "Datos del revisor y motivo"
// @Success 200 {object} dto.SesionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Failure 422 {object} apierror.ValidationError
// @Router /v1/sesiones/{id}/rechazar [post]
func (h *SesionesHandler) Rechazar(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.RevisionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Rechazar(c.Request.Context(), id, req.Aprobador, req.Motivo)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// MigrarHuerfanos godoc
// @Summary Migra pedidos pagados sin sesion hacia la sesion indicada
// @Tags sesiones
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID de sesion destino"
// @Param body body dto.MigrarHuerfanosRequest false "Rango de fechas opcional"
// @Success 200 {object} dto.MigracionResponse
// @Failure 404 {object} apierror.APIError
// @Failure 409 {object} apierror.APIError
// @Router /v1/sesiones/{id}/migrar-huerfanos [post]
func (h *SesionesHandler) MigrarHuerfanos(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req dto.MigrarHuerfanosRequest
	if c.Request.ContentLength > 0 && !bindAndValidate(c, &req) {
		return
	}
	var rango *repository.RangoFechas
	if req.Desde != nil && req.Hasta != nil {
		if req.Hasta.Before(*req.Desde) {
			c.JSON(http.StatusBadRequest, apierror.New("hasta debe ser posterior a desde"))
			return
		}
		rango = &repository.RangoFechas{Desde: *req.Desde, Hasta: *req.Hasta}
	}
	resp, err := h.svc.MigrarPedidosHuerfanos(c.Request.Context(), id, rango)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
