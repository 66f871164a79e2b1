package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fixitnow/fixitnow/internal/api/handler"
	"github.com/fixitnow/fixitnow/internal/api/middleware"
	"github.com/fixitnow/fixitnow/internal/core/domain"
	"github.com/fixitnow/fixitnow/internal/core/ports"
	"github.com/fixitnow/fixitnow/internal/core/service"
)

// Dependencies carries the externally constructed resources the router wires
// into handlers. Stores are built by the caller so it can seed them before
// the server starts accepting traffic.
type Dependencies struct {
	Mongo        *mongo.Database
	Redis        *redis.Client
	RequestStore ports.RequestStore
	UserStore    ports.UserStore
	Notifier     ports.Notifier
	JWTSecret    string
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("fixitnow"))

	// --- Services ---
	requestService := service.NewRequestService(deps.RequestStore, deps.Notifier, deps.Logger)
	authService := service.NewAuthService(deps.UserStore, deps.Notifier, deps.JWTSecret, 24*time.Hour)

	// --- Handlers ---
	requestHandler := handler.NewRequestHandler(requestService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	authRequired := middleware.Auth(deps.JWTSecret)
	homeownerOnly := middleware.RequireRole(domain.RoleHomeowner)
	providerOnly := middleware.RequireRole(domain.RoleServiceProvider)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Service request routes ---
	v1 := e.Group("/v1", authRequired)
	v1.POST("/requests", requestHandler.Create, homeownerOnly)
	v1.GET("/requests", requestHandler.List)
	v1.GET("/requests/:service_id", requestHandler.Get)
	v1.POST("/requests/:service_id/accept", requestHandler.Accept, providerOnly)
	v1.POST("/requests/:service_id/start", requestHandler.Start, providerOnly)
	v1.POST("/requests/:service_id/complete", requestHandler.Complete, providerOnly)
	v1.POST("/requests/:service_id/rate", requestHandler.Rate, homeownerOnly)
	v1.GET("/dashboard/stats", requestHandler.Stats)

	// --- Health probes and metrics (no auth required) ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
