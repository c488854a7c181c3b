package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/talentgate/account-service/internal/api/handler"
	"github.com/talentgate/account-service/internal/api/middleware"
	"github.com/talentgate/account-service/internal/core/domain"
	"github.com/talentgate/account-service/internal/core/ports"

	_ "github.com/talentgate/account-service/docs"
)

const (
	metricsSubsystem = "accounts_http"
	// bodyLimit leaves headroom above the picture size limit for multipart framing.
	bodyLimit = "12M"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Auth     ports.AuthService
	Profiles ports.ProfileService
	Tokens   ports.TokenVerifier
	Health   map[string]handler.Pinger
	Log      zerolog.Logger

	// Registerer and Gatherer default to the global Prometheus registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// route is one entry of the access policy table.
type route struct {
	method  string
	path    string
	access  middleware.Access
	handler echo.HandlerFunc
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	e.Use(echomiddleware.BodyLimit(bodyLimit))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: deps.Registerer,
	}))

	for _, r := range routes(deps) {
		e.Add(r.method, r.path, r.handler, r.access.Chain(deps.Tokens)...)
	}

	return e
}

// routes is the single declaration of every endpoint and who may call it.
func routes(deps Deps) []route {
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Log)
	profileHandler := handler.NewProfileHandler(deps.Profiles)
	reviewHandler := handler.NewReviewHandler(deps.Profiles)
	dashboardHandler := handler.NewDashboardHandler()
	healthHandler := handler.NewHealthHandler(deps.Health)

	metricsHandler := echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	})

	admin := middleware.Role(domain.RoleAdmin)
	employer := middleware.Role(domain.RoleEmployer)

	return []route{
		// --- Auth ---
		{http.MethodPost, "/register", middleware.Public, authHandler.Register},
		{http.MethodPost, "/login", middleware.Public, authHandler.Login},

		// --- Dashboards ---
		{http.MethodGet, "/dashboard", middleware.Authenticated, dashboardHandler.Dashboard},
		{http.MethodGet, "/admin", admin, dashboardHandler.Admin},
		{http.MethodGet, "/employer", employer, dashboardHandler.Employer},

		// --- Own profile ---
		{http.MethodGet, "/profile", middleware.Authenticated, profileHandler.GetProfile},
		{http.MethodPut, "/profile", middleware.Authenticated, profileHandler.SubmitUpdate},
		{http.MethodDelete, "/profile/picture", middleware.Authenticated, profileHandler.DeletePicture},
		{http.MethodPost, "/upload/profile-pic", middleware.Authenticated, profileHandler.UploadPicture},

		// --- Review ---
		{http.MethodGet, "/profile-requests", admin, reviewHandler.ListPending},
		{http.MethodPost, "/profile-requests/:id/approve", admin, reviewHandler.Approve},
		{http.MethodPost, "/profile-requests/:id/decline", admin, reviewHandler.Decline},

		// --- Operations ---
		{http.MethodGet, "/health", middleware.Public, healthHandler.Liveness},
		{http.MethodGet, "/health/ready", middleware.Public, healthHandler.Readiness},
		{http.MethodGet, "/metrics", middleware.Public, metricsHandler},
		{http.MethodGet, "/swagger/*", middleware.Public, echoSwagger.WrapHandler},
	}
}

// requestLogger forwards Echo's request log to zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				evt = log.Warn().Err(v.Error)
			}
			evt.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
