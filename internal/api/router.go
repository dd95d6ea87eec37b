package api

import (
	"fmt"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/autox/marketplace-client/internal/api/handler"
	"github.com/autox/marketplace-client/internal/api/middleware"
	"github.com/autox/marketplace-client/internal/core/domain"
	"github.com/autox/marketplace-client/internal/core/ports"
	"github.com/autox/marketplace-client/internal/metrics"
)

// APIPrefix is the path prefix of every marketplace route.
const APIPrefix = "/api"

// Dependencies are the services and infrastructure the router wires.
type Dependencies struct {
	Auth            ports.AuthService
	Vehicles        ports.ListingService
	Materials       ports.ListingService
	Partners        ports.PartnerService
	ServiceRequests ports.ServiceRequestService

	// Checks are run by the readiness probe, keyed by dependency name.
	Checks map[string]handler.Check

	LoginLimiter *middleware.RateLimiter
	Metrics      *metrics.Backend
	Registry     *prometheus.Registry
	Logger       zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORS())

	if deps.Registry != nil {
		mw, err := echoprometheus.MiddlewareConfig{
			Namespace:  "autox",
			Subsystem:  "mock_http",
			Registerer: deps.Registry,
		}.ToMiddleware()
		if err != nil {
			return nil, fmt.Errorf("prometheus middleware: %w", err)
		}
		e.Use(mw)
		e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: deps.Registry}))
	}

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks)

	e.GET("/health", healthHandler.Liveness)            // liveness: is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness: are dependencies up?

	api := e.Group(APIPrefix)
	auth := middleware.Auth(deps.Auth)

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Metrics)
	var loginLimit []echo.MiddlewareFunc
	if deps.LoginLimiter != nil {
		loginLimit = append(loginLimit, deps.LoginLimiter.Middleware())
	}
	api.POST("/auth/register", authHandler.Register, loginLimit...)
	api.POST("/auth/login", authHandler.Login, loginLimit...)
	api.GET("/auth/me", authHandler.Me, auth)
	api.PUT("/auth/profile", authHandler.UpdateProfile, auth)
	api.POST("/auth/change-password", authHandler.ChangePassword, auth)
	api.POST("/auth/logout", authHandler.Logout, auth)

	// --- Listing routes ---
	vehicles := handler.NewListingHandler(deps.Vehicles, "Vehicle")
	vehicleOwners := middleware.RBAC(domain.RoleVehicleOwner, domain.RoleAdmin)
	api.GET("/vehicles", vehicles.List)
	api.GET("/vehicles/categories/list", vehicles.Categories)
	api.GET("/vehicles/:id", vehicles.Get)
	api.POST("/vehicles", vehicles.Create, auth, vehicleOwners)
	api.PUT("/vehicles/:id", vehicles.Update, auth, vehicleOwners)
	api.DELETE("/vehicles/:id", vehicles.Delete, auth, vehicleOwners)
	api.POST("/vehicles/:id/availability", vehicles.UpdateAvailability, auth, vehicleOwners)

	materials := handler.NewListingHandler(deps.Materials, "Material")
	suppliers := middleware.RBAC(domain.RoleMaterialSupplier, domain.RoleAdmin)
	api.GET("/materials", materials.List)
	api.GET("/materials/categories/list", materials.Categories)
	api.GET("/materials/:id", materials.Get)
	api.POST("/materials", materials.Create, auth, suppliers)
	api.PUT("/materials/:id", materials.Update, auth, suppliers)
	api.DELETE("/materials/:id", materials.Delete, auth, suppliers)

	// --- Partner routes ---
	partners := handler.NewPartnerHandler(deps.Partners)
	api.POST("/partners/register", partners.Register, auth)
	api.GET("/partners/me", partners.Mine, auth)
	api.PUT("/partners/me", partners.UpdateMine, auth)
	api.GET("/partners", partners.List, auth)
	api.PUT("/partners/:id/verify", partners.Verify, auth, middleware.RBAC(domain.RoleAdmin))

	// --- Service request routes ---
	requests := handler.NewServiceRequestHandler(deps.ServiceRequests)
	api.POST("/service-requests", requests.Create, auth)
	api.GET("/service-requests", requests.List, auth)
	api.GET("/service-requests/:id", requests.Get, auth)
	api.PUT("/service-requests/:id/status", requests.UpdateStatus, auth)
	api.POST("/service-requests/:id/feedback", requests.AddFeedback, auth)

	// --- Upload routes ---
	uploads := handler.NewUploadHandler(deps.Metrics)
	api.POST("/upload/profile-image", uploads.ProfileImage, auth)
	api.POST("/upload/documents", uploads.Documents, auth)

	return e, nil
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
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
