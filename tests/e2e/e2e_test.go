//go:build integration

package e2e

// End-to-end tests against real Postgres + Redis via testcontainers.
// Run with: go test -tags integration ./tests/e2e/... -v

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cajacore/internal/config"
	"cajacore/internal/dto"
	"cajacore/internal/infra"
	"cajacore/internal/model"
	"cajacore/internal/repository"
	"cajacore/internal/router"
	"cajacore/internal/service"
	"cajacore/internal/worker"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

// ── Helpers ──────────────────────────────────────────────────────────────────

func jsonBody(t *testing.T, v any) *bytes.Buffer {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func do(t *testing.T, srv *httptest.Server, method, path string, body *bytes.Buffer, token string) *http.Response {
	t.Helper()
	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequest(method, srv.URL+path, body)
	} else {
		req, err = http.NewRequest(method, srv.URL+path, nil)
	}
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

// ── Test Suite Setup ─────────────────────────────────────────────────────────

type testEnv struct {
	server *httptest.Server
	token  string // supervisor JWT
	db     *gorm.DB
	rdb    *goredis.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.Run(ctx, "postgres:15-alpine",
		tcPostgres.WithDatabase("cajacore_test"),
		tcPostgres.WithUsername("cajacore"),
		tcPostgres.WithPassword("cajacore"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Port:               8000,
		Env:                "test",
		JWTSecret:          "test-secret-key",
		JWTExpirationHours: 8,
		JWTRefreshHours:    24,
		DatabaseURL:        pgURL,
		RedisURL:           rdURL,
		WorkerPoolSize:     1,
		PDFStoragePath:     t.TempDir(),
		ToleranciaCuadre:   "0",
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)

	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	// Seed a supervisor through the auth service so the bcrypt hash is real.
	authSvc := service.NewAuthService(repository.NewUsuarioRepository(db), cfg)
	_, err = authSvc.CrearUsuario(ctx, dto.CrearUsuarioRequest{
		Username: "super@e2e.test",
		Nombre:   "Supervisor E2E",
		Password: "cajacore2026",
		Rol:      "supervisor",
	})
	require.NoError(t, err)

	dispatcher := worker.NewDispatcher(rdb)
	r := router.New(cfg, db, rdb, dispatcher)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	loginResp := do(t, srv, "POST", "/v1/auth/login",
		jsonBody(t, map[string]string{"username": "super@e2e.test", "password": "cajacore2026"}),
		"",
	)
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	var loginBody struct {
		AccessToken string `json:"access_token"`
	}
	decodeJSON(t, loginResp, &loginBody)
	require.NotEmpty(t, loginBody.AccessToken)

	return &testEnv{server: srv, token: loginBody.AccessToken, db: db, rdb: rdb}
}

func (env *testEnv) abrirSesion(t *testing.T, fondo float64) string {
	t.Helper()
	resp := do(t, env.server, "POST", "/v1/sesiones",
		jsonBody(t, map[string]any{
			"nombre":        "Turno E2E",
			"responsable":   "Cajera E2E",
			"fondo_inicial": fondo,
		}), env.token)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var sesion struct {
		ID string `json:"id"`
	}
	decodeJSON(t, resp, &sesion)
	return sesion.ID
}

func (env *testEnv) insertarPedidoPagado(t *testing.T, sesionID *string, monto int64) {
	t.Helper()
	hace := time.Now().UTC().Add(-time.Minute)
	pedido := model.Pedido{
		Total:       decimal.NewFromInt(monto),
		TotalPagado: decimal.NewFromInt(monto),
		MetodoPago:  "efectivo",
		Estado:      model.PedidoPagado,
		FechaPago:   &hace,
	}
	if sesionID != nil {
		id, err := uuid.Parse(*sesionID)
		require.NoError(t, err)
		pedido.SesionCajaID = &id
	}
	require.NoError(t, env.db.Create(&pedido).Error)
}

// ── Tests ────────────────────────────────────────────────────────────────────

// Full cycle: open → sell → summary → close → approve.
func TestE2E_CicloCierreCompleto(t *testing.T) {
	env := setupTestEnv(t)

	sesionID := env.abrirSesion(t, 10000)
	env.insertarPedidoPagado(t, &sesionID, 25000)
	env.insertarPedidoPagado(t, &sesionID, 15000)

	// Live preview before closing
	resumenResp := do(t, env.server, "GET", "/v1/sesiones/"+sesionID+"/resumen", nil, env.token)
	require.Equal(t, http.StatusOK, resumenResp.StatusCode)
	var resumen struct {
		TotalVentas      float64 `json:"total_ventas,string"`
		EfectivoEsperado float64 `json:"efectivo_esperado,string"`
	}
	decodeJSON(t, resumenResp, &resumen)
	assert.Equal(t, 40000.0, resumen.TotalVentas)
	assert.Equal(t, 50000.0, resumen.EfectivoEsperado)

	// Close with the exact expected cash
	cerrarResp := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/cerrar",
		jsonBody(t, map[string]any{
			"efectivo_declarado_desglosado": map[string]float64{"efectivo": 50000},
		}), env.token)
	require.Equal(t, http.StatusOK, cerrarResp.StatusCode)
	var cerrada struct {
		Estado     string  `json:"estado"`
		Cerrada    bool    `json:"cerrada"`
		Diferencia float64 `json:"diferencia,string"`
		Cuadrado   bool    `json:"cuadrado"`
	}
	decodeJSON(t, cerrarResp, &cerrada)
	assert.Equal(t, "pendiente_revision", cerrada.Estado)
	assert.True(t, cerrada.Cerrada)
	assert.Equal(t, 0.0, cerrada.Diferencia)
	assert.True(t, cerrada.Cuadrado)

	// The closing report job was queued for the worker pool.
	queued, err := env.rdb.LLen(context.Background(), worker.QueueCierre).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), queued)

	// Approve
	aprobarResp := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/aprobar",
		jsonBody(t, map[string]any{"aprobador": "Supervisor E2E"}), env.token)
	require.Equal(t, http.StatusOK, aprobarResp.StatusCode)
	var aprobada struct {
		Estado      string `json:"estado"`
		AprobadoPor string `json:"aprobado_por"`
	}
	decodeJSON(t, aprobarResp, &aprobada)
	assert.Equal(t, "aprobada", aprobada.Estado)
	assert.Equal(t, "Supervisor E2E", aprobada.AprobadoPor)
}

// The partial unique index rejects a second open session.
func TestE2E_SesionDuplicada(t *testing.T) {
	env := setupTestEnv(t)

	env.abrirSesion(t, 0)

	resp := do(t, env.server, "POST", "/v1/sesiones",
		jsonBody(t, map[string]any{
			"nombre":        "Segunda",
			"responsable":   "Otro",
			"fondo_inicial": 0,
		}), env.token)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestE2E_MigrarHuerfanos(t *testing.T) {
	env := setupTestEnv(t)

	// Orders paid with no session open
	env.insertarPedidoPagado(t, nil, 12000)
	env.insertarPedidoPagado(t, nil, 8000)

	sesionID := env.abrirSesion(t, 0)

	migrarResp := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/migrar-huerfanos", nil, env.token)
	require.Equal(t, http.StatusOK, migrarResp.StatusCode)
	var migracion struct {
		Migrados     int     `json:"migrados"`
		TotalMigrado float64 `json:"total_migrado,string"`
	}
	decodeJSON(t, migrarResp, &migracion)
	assert.Equal(t, 2, migracion.Migrados)
	assert.Equal(t, 20000.0, migracion.TotalMigrado)

	// The migrated orders now count in the session summary.
	resumenResp := do(t, env.server, "GET", "/v1/sesiones/"+sesionID+"/resumen", nil, env.token)
	require.Equal(t, http.StatusOK, resumenResp.StatusCode)
	var resumen struct {
		TotalVentas float64 `json:"total_ventas,string"`
	}
	decodeJSON(t, resumenResp, &resumen)
	assert.Equal(t, 20000.0, resumen.TotalVentas)
}

func TestE2E_RechazoConMotivo(t *testing.T) {
	env := setupTestEnv(t)

	sesionID := env.abrirSesion(t, 5000)
	cerrarResp := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/cerrar",
		jsonBody(t, map[string]any{
			"efectivo_declarado_desglosado": map[string]float64{"efectivo": 3000},
		}), env.token)
	require.Equal(t, http.StatusOK, cerrarResp.StatusCode)
	cerrarResp.Body.Close()

	// Rejecting without a reason is a validation error
	sinMotivo := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/rechazar",
		jsonBody(t, map[string]any{"aprobador": "Supervisor E2E"}), env.token)
	assert.Equal(t, http.StatusUnprocessableEntity, sinMotivo.StatusCode)
	sinMotivo.Body.Close()

	rechazarResp := do(t, env.server, "POST", "/v1/sesiones/"+sesionID+"/rechazar",
		jsonBody(t, map[string]any{"aprobador": "Supervisor E2E", "motivo": "faltante de 2000"}), env.token)
	require.Equal(t, http.StatusOK, rechazarResp.StatusCode)
	var rechazada struct {
		Estado        string `json:"estado"`
		Observaciones string `json:"observaciones"`
	}
	decodeJSON(t, rechazarResp, &rechazada)
	assert.Equal(t, "rechazada", rechazada.Estado)
	assert.Equal(t, "RECHAZADO: faltante de 2000", rechazada.Observaciones)
}
