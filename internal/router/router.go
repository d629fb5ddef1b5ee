package router

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/juliosincable/infourbi/internal/cambios"
	"github.com/juliosincable/infourbi/internal/config"
	"github.com/juliosincable/infourbi/internal/handler"
	"github.com/juliosincable/infourbi/internal/infra"
	"github.com/juliosincable/infourbi/internal/middleware"
	"github.com/juliosincable/infourbi/internal/model"
	"github.com/juliosincable/infourbi/internal/preferencias"
	"github.com/juliosincable/infourbi/internal/repository"
	"github.com/juliosincable/infourbi/internal/service"
	"github.com/juliosincable/infourbi/internal/store"
	"github.com/juliosincable/infourbi/internal/ubicacion"
	"github.com/juliosincable/infourbi/internal/worker"
)

// Deps are the connections opened by main. Redis and Firebase may be nil.
type Deps struct {
	Backend  store.Backend
	Hub      *cambios.Hub
	Redis    *redis.Client
	Firebase *infra.Firebase
}

// App is the wired HTTP application plus the background loops it owns.
type App struct {
	Engine   *gin.Engine
	Sesiones *ubicacion.Sesiones

	limiters []*middleware.RateLimiter
}

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← Store backend/Redis
func New(cfg *config.Config, deps Deps) *App {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	apiLimiter := middleware.NewRateLimiter(1000, time.Minute) // 1000 req/min per IP
	loginLimiter := middleware.NewLoginRateLimiter()

	// ── Change feed ──────────────────────────────────────────────────────────
	// With redis every instance publishes to the channel and the relay feeds
	// the local hub, so local mutations are not published twice.
	var pub cambios.Publisher = deps.Hub
	if deps.Redis != nil {
		pub = cambios.NewRedisPublisher(deps.Redis)
	}
	if cfg.CambiosDesdeStream {
		// cmd/cambios-lambda publishes from the DynamoDB stream
		pub = nil
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	cols := repository.NewColecciones(deps.Backend, pub)
	usuarioRepo := repository.NewUsuarioRepository(cols.Usuarios)
	ubicacionRepo := repository.NewUbicacionRepository(cols)
	negocioRepo := repository.NewNegocioRepository(cols.Negocios)
	catalogoRepo := repository.NewCatalogoRepository(cols)

	// ── Services ─────────────────────────────────────────────────────────────
	authDeps := service.AuthDeps{}
	var prefs preferencias.Store
	if deps.Redis != nil {
		authDeps.Revocaciones = service.NewRevocacionesRedis(deps.Redis)
		// Worker dispatcher, consumed by the pool started in main
		authDeps.Bienvenida = worker.NewDispatcher(deps.Redis)
		prefs = preferencias.NewRedis(deps.Redis)
	} else {
		authDeps.Revocaciones = service.NewRevocacionesMemoria()
		prefs = preferencias.NewMemoria()
	}
	if deps.Firebase != nil && deps.Firebase.Auth != nil {
		authDeps.Firebase = deps.Firebase.Auth
	}

	authSvc := service.NewAuthService(usuarioRepo, cfg, authDeps)
	ubicacionSvc := service.NewUbicacionService(ubicacionRepo)
	negocioSvc := service.NewNegocioService(negocioRepo, catalogoRepo)
	resumenSvc := service.NewResumenService(cols)

	idle := time.Duration(cfg.SelectorIdleMinutes) * time.Minute
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	sesiones := ubicacion.NewSesiones(ubicacion.Dependencias{
		Repo:    ubicacionRepo,
		Prefs:   prefs,
		Cambios: deps.Hub,
	}, idle)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Handler())
	r.Use(middleware.ResolverSesion(authSvc))

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc, cfg.IsProduction())
	ubicacionesH := handler.NewUbicacionesHandler(ubicacionSvc)
	seleccionH := handler.NewSeleccionHandler(sesiones)
	negociosH := handler.NewNegociosHandler(negocioSvc)
	paginasH := handler.NewPaginasHandler(authSvc, negocioSvc, resumenSvc, sesiones)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(deps.Backend, cfg.StoreDriver, deps.Redis))
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/home") })
	r.GET("/negocio/:id", paginasH.Negocio)

	// Screens
	r.GET("/login", middleware.Anonima(), paginasH.Login)
	privada := r.Group("", middleware.Privada())
	{
		privada.GET("/profile", paginasH.Profile)
		privada.GET("/home", paginasH.Home)
		privada.GET("/prueba", paginasH.Prueba)
	}

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Handler(), authH.Login)
		auth.POST("/registro", loginLimiter.Handler(), authH.Registrar)
		auth.POST("/logout", authH.Logout)
		auth.GET("/sesion", authH.Sesion)
		auth.GET("/me", middleware.RequiereSesion(), authH.Perfil)
	}

	// Protected routes
	v1 := r.Group("/v1", middleware.RequiereSesion())
	{
		v1.GET("/cambios", handler.Cambios(deps.Hub))

		v1.GET("/paises", ubicacionesH.ListarPaises)
		v1.POST("/paises", ubicacionesH.CrearPais)
		v1.PUT("/paises/:id", ubicacionesH.Renombrar(model.ColeccionPaises))
		v1.DELETE("/paises/:id", ubicacionesH.Eliminar(model.ColeccionPaises))

		v1.GET("/estados", ubicacionesH.ListarEstados)
		v1.POST("/estados", ubicacionesH.CrearEstado)
		v1.PUT("/estados/:id", ubicacionesH.Renombrar(model.ColeccionEstados))
		v1.DELETE("/estados/:id", ubicacionesH.Eliminar(model.ColeccionEstados))

		v1.GET("/ciudades", ubicacionesH.ListarCiudades)
		v1.POST("/ciudades", ubicacionesH.CrearCiudad)
		v1.PUT("/ciudades/:id", ubicacionesH.Renombrar(model.ColeccionCiudades))
		v1.DELETE("/ciudades/:id", ubicacionesH.Eliminar(model.ColeccionCiudades))
		v1.GET("/ciudades/:id/etiqueta", ubicacionesH.Etiqueta)

		v1.POST("/ubicaciones", ubicacionesH.CrearEnCascada)

		sel := v1.Group("/seleccion")
		{
			sel.GET("", seleccionH.Vista)
			sel.POST("/eventos", seleccionH.Evento)
			sel.GET("/stream", seleccionH.Stream)
			sel.DELETE("", seleccionH.Cerrar)
		}

		neg := v1.Group("/negocios")
		{
			neg.GET("", negociosH.Listar)
			neg.POST("", negociosH.Crear)
			neg.GET("/:id", negociosH.Obtener)
			neg.PUT("/:id", negociosH.Actualizar)
			neg.DELETE("/:id", negociosH.Eliminar)
			neg.PATCH("/:id/formulario", negociosH.Formulario)
			neg.GET("/:id/ficha", negociosH.Ficha)
			neg.GET("/:id/ficha.pdf", negociosH.FichaPDF)
			neg.GET("/:id/lugares", negociosH.Lugares)
			neg.GET("/:id/productos", negociosH.Productos)
		}
		v1.GET("/lugares/:id/eventos", negociosH.Eventos)
		v1.GET("/usuarios/:id/negocios", negociosH.DePropietario)
	}

	return &App{Engine: r, Sesiones: sesiones, limiters: []*middleware.RateLimiter{apiLimiter, loginLimiter}}
}

// Run drives the selector expiry and the rate limiter purges until ctx is
// done, then closes every open selector.
func (a *App) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.Sesiones.Run(ctx, time.Minute)
	}()
	for _, l := range a.limiters {
		wg.Add(1)
		go func(l *middleware.RateLimiter) {
			defer wg.Done()
			l.Run(ctx)
		}(l)
	}
	wg.Wait()
}
