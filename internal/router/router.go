package router

import (
	"time"

	"facturador/internal/config"
	"facturador/internal/handler"
	"facturador/internal/infra"
	"facturador/internal/middleware"
	"facturador/internal/repository"
	"facturador/internal/service"
	"facturador/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, afipCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher, pdfGen *infra.PDFGenerator) *gin.Engine {
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
	clienteRepo := repository.NewClienteRepository(db)
	articuloRepo := repository.NewArticuloRepository(db)
	zonaRepo := repository.NewZonaRepository(db)
	comprobanteRepo := repository.NewComprobanteRepository(db)
	remitoRepo := repository.NewRemitoRepository(db)
	gastoRepo := repository.NewGastoRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(usuarioRepo, cfg)
	clienteSvc := service.NewClienteService(clienteRepo)
	articuloSvc := service.NewArticuloService(articuloRepo)
	zonaSvc := service.NewZonaService(zonaRepo)
	comprobanteSvc := service.NewComprobanteService(comprobanteRepo, clienteRepo, articuloRepo, dispatcher, cfg.AFIPPuntoVenta)
	remitoSvc := service.NewRemitoService(remitoRepo, clienteRepo, articuloRepo, pdfGen)
	gastoSvc := service.NewGastoService(gastoRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usuariosH := handler.NewUsuariosHandler(authSvc)
	clientesH := handler.NewClientesHandler(clienteSvc)
	articulosH := handler.NewArticulosHandler(articuloSvc)
	zonasH := handler.NewZonasHandler(zonaSvc)
	comprobantesH := handler.NewComprobantesHandler(comprobanteSvc)
	remitosH := handler.NewRemitosHandler(remitoSvc)
	gastosH := handler.NewGastosHandler(gastoSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, afipCB))

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
		// Roles: operador, administrador — declared per-endpoint
		lectura := middleware.RequireRole("operador", "administrador")
		admin := middleware.RequireRole("administrador")

		clientes := v1.Group("/clientes")
		{
			clientes.GET("", lectura, clientesH.Listar)
			clientes.GET("/:id", lectura, clientesH.Obtener)
			clientes.POST("", lectura, clientesH.Crear)
			clientes.PUT("/:id", lectura, clientesH.Actualizar)
			clientes.DELETE("/:id", admin, clientesH.Desactivar)
			clientes.PATCH("/:id/reactivar", admin, clientesH.Reactivar)
		}

		articulos := v1.Group("/articulos")
		{
			articulos.GET("", lectura, articulosH.Listar)
			articulos.GET("/:id", lectura, articulosH.Obtener)
			articulos.POST("", lectura, articulosH.Crear)
			articulos.PUT("/:id", lectura, articulosH.Actualizar)
			articulos.DELETE("/:id", admin, articulosH.Desactivar)
			articulos.PATCH("/:id/reactivar", admin, articulosH.Reactivar)
		}

		zonas := v1.Group("/zonas")
		{
			zonas.GET("", lectura, zonasH.Listar)
			zonas.POST("", admin, zonasH.Crear)
			zonas.PUT("/:id", admin, zonasH.Actualizar)
			zonas.DELETE("/:id", admin, zonasH.Desactivar)
		}

		comprobantes := v1.Group("/comprobantes")
		{
			comprobantes.POST("", lectura, comprobantesH.Crear)
			comprobantes.GET("", lectura, comprobantesH.Listar)
			comprobantes.GET("/:id", lectura, comprobantesH.Obtener)
			comprobantes.GET("/:id/pdf", lectura, comprobantesH.PDF)
			comprobantes.POST("/:id/reintentar", admin, comprobantesH.Reintentar)
		}

		remitos := v1.Group("/remitos")
		{
			remitos.POST("", lectura, remitosH.Crear)
			remitos.GET("", lectura, remitosH.Listar)
			remitos.GET("/:id", lectura, remitosH.Obtener)
			remitos.GET("/:id/pdf", lectura, remitosH.PDF)
			remitos.PATCH("/:id/estado", lectura, remitosH.CambiarEstado)
		}

		gastos := v1.Group("/gastos")
		{
			gastos.POST("", lectura, gastosH.Crear)
			gastos.GET("", lectura, gastosH.Listar)
			gastos.GET("/:id", lectura, gastosH.Obtener)
			gastos.PUT("/:id", lectura, gastosH.Actualizar)
			gastos.DELETE("/:id", admin, gastosH.Eliminar)
		}

		usuarios := v1.Group("/usuarios", admin)
		{
			usuarios.POST("", usuariosH.Crear)
			usuarios.GET("", usuariosH.Listar)
			usuarios.PUT("/:id", usuariosH.Actualizar)
			usuarios.DELETE("/:id", usuariosH.Desactivar)
			usuarios.PATCH("/:id/reactivar", usuariosH.Reactivar)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
