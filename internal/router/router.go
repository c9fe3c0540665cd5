package router

import (
	"time"

	"cajacore/internal/config"
	"cajacore/internal/handler"
	"cajacore/internal/middleware"
	"cajacore/internal/repository"
	"cajacore/internal/service"
	"cajacore/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	usuarioRepo := repository.NewUsuarioRepository(db)
	sesionRepo := repository.NewSesionRepository(db)
	pedidoRepo := repository.NewPedidoRepository(db)
	gastoRepo := repository.NewGastoRepository(db)
	facturaRepo := repository.NewFacturaCompraRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	tolerancia, err := decimal.NewFromString(cfg.ToleranciaCuadre)
	if err != nil {
		tolerancia = decimal.Zero
	}
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	resumenSvc := service.NewResumenService(pedidoRepo, gastoRepo, facturaRepo)
	sesionSvc := service.NewSesionService(
		sesionRepo, pedidoRepo, resumenSvc, dispatcher, db,
		tolerancia, time.Duration(cfg.CierreTimeoutSeconds)*time.Second,
	)
	consolidadoSvc := service.NewConsolidadoService(sesionRepo, resumenSvc)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	sesionesH := handler.NewSesionesHandler(sesionSvc, consolidadoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		sesiones := v1.Group("/sesiones")
		{
			todos := middleware.RequireRole("cajero", "supervisor", "administrador")
			revisores := middleware.RequireRole("supervisor", "administrador")

			sesiones.POST("", todos, sesionesH.Abrir)
			sesiones.GET("", revisores, sesionesH.Listar)
			sesiones.GET("/activa", todos, sesionesH.ObtenerActiva)
			sesiones.GET("/consolidado", revisores, sesionesH.Consolidado)
			sesiones.GET("/:id", todos, sesionesH.ObtenerPorID)
			sesiones.GET("/:id/resumen", todos, sesionesH.Resumen)
			sesiones.POST("/:id/cerrar", todos, sesionesH.Cerrar)
			sesiones.POST("/:id/aprobar", revisores, sesionesH.Aprobar)
			sesiones.POST("/:id/rechazar", revisores, sesionesH.Rechazar)
			sesiones.POST("/:id/migrar-huerfanos", revisores, sesionesH.MigrarHuerfanos)
		}

		usuarios := v1.Group("/usuarios", middleware.RequireRole("administrador"))
		{
			usuarios.POST("", authH.CrearUsuario)
			usuarios.GET("", authH.ListarUsuarios)
			usuarios.DELETE("/:id", authH.DesactivarUsuario)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
