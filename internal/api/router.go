package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/coursehub/marketplace/docs"
	"github.com/coursehub/marketplace/internal/api/handler"
	"github.com/coursehub/marketplace/internal/api/middleware"
	"github.com/coursehub/marketplace/internal/core/domain"
	"github.com/coursehub/marketplace/internal/core/ports"
	"github.com/coursehub/marketplace/internal/infrastructure/config"
	"github.com/coursehub/marketplace/internal/infrastructure/http/handlers"
)

const apiPrefix = "/api/v1"

// Dependencies is everything the router needs. Registerer and Gatherer default
// to the global Prometheus registry; tests pass a fresh one per router.
type Dependencies struct {
	Config     *config.Config
	Auth       ports.AuthService
	Tokens     ports.TokenVerifier
	Courses    ports.CourseService
	Purchases  ports.PurchaseService
	Checks     map[string]handlers.Check
	Logger     zerolog.Logger
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	cfg := deps.Config
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)
	e.Validator = handler.NewValidator()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	// Room for the text fields next to the largest accepted image.
	e.Use(echomiddleware.BodyLimit(fmt.Sprintf("%dM", cfg.Media.MaxUploadMB+1)))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "coursehub",
		Subsystem:  "http",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Handlers ---
	secure := cfg.IsProduction()
	adminAuth := handler.NewAuthHandler(deps.Auth, domain.PrincipalAdmin, secure)
	userAuth := handler.NewAuthHandler(deps.Auth, domain.PrincipalUser, secure)
	courses := handler.NewCourseHandler(deps.Courses)
	purchases := handler.NewPurchaseHandler(deps.Purchases)

	requireAdmin := middleware.RequireAdmin(deps.Tokens)
	requireUser := middleware.RequireUser(deps.Tokens)

	v1 := e.Group(apiPrefix)

	// --- Admin routes ---
	admin := v1.Group("/admin")
	admin.POST("/signup", adminAuth.Signup)
	admin.POST("/login", adminAuth.Login)
	admin.GET("/logout", adminAuth.Logout)

	// --- User routes ---
	user := v1.Group("/user")
	user.POST("/signup", userAuth.Signup)
	user.POST("/login", userAuth.Login)
	user.GET("/logout", userAuth.Logout)
	user.GET("/purchased-courses", purchases.Purchased, requireUser)

	// --- Course routes ---
	course := v1.Group("/course")
	course.POST("/create", courses.Create, requireAdmin)
	course.PUT("/update/:courseId", courses.Update, requireAdmin)
	course.DELETE("/delete/:courseId", courses.Delete, requireAdmin)
	course.GET("/courses", courses.List)
	course.GET("/:courseId", courses.Get)
	course.POST("/buy/:courseId", purchases.Buy, requireUser)

	// --- Health probes (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)

	// --- Ops ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.Static("/media", cfg.Media.Dir)

	return e
}

// requestLogger emits one zerolog line per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
