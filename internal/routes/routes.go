package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/retain-dental/retain/internal/config"
	"github.com/retain-dental/retain/internal/identity"
	"github.com/retain-dental/retain/internal/logo"
	"github.com/retain-dental/retain/internal/metrics"
	"github.com/retain-dental/retain/internal/middleware"
	"github.com/retain-dental/retain/internal/notification"
	"github.com/retain-dental/retain/internal/patient"
	"github.com/retain-dental/retain/internal/provisioning"
	"github.com/retain-dental/retain/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg      config.Config
	DB       *pgxpool.Pool
	Cache    *redis.Client
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))

	RegisterHealthRoutes(app, d)
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	identities, err := identityProvider(d)
	if err != nil {
		return err
	}

	var (
		profiles patient.Repository
		wallets  wallet.Repository
		clinics  logo.Directory
	)
	if d.DB != nil {
		profiles = patient.NewPostgresRepository(d.DB)
		wallets = wallet.NewPostgresRepository(d.DB)
		clinics = logo.NewPostgresDirectory(d.DB)
	} else {
		d.Logger.Warn("no database configured, using in-memory stores")
		profiles = patient.NewMemoryRepository()
		wallets = wallet.NewMemoryRepository()
		clinics = logo.NewMemoryDirectory()
	}

	orchestrator := provisioning.New(identities, provisioning.NewStore(profiles, wallets),
		provisioning.WithLogger(d.Logger),
		provisioning.WithMetrics(d.Metrics),
		provisioning.WithNotifier(notification.NewLoggerNotifier(d.Logger)),
		provisioning.WithLoginDomain(d.Cfg.LoginDomain),
		provisioning.WithStepTimeout(d.Cfg.StepTimeout),
		provisioning.WithFallbackPIN(d.Cfg.FallbackPIN),
		provisioning.WithRequirePIN(d.Cfg.RequirePIN),
		provisioning.WithConcurrentRecords(d.Cfg.ConcurrentRecords),
	)
	logos := logo.NewService(clinics, d.Cache, logo.Config{
		CacheTTL:     d.Cfg.LogoCacheTTL,
		FetchTimeout: d.Cfg.LogoFetchTimeout,
	}, d.Logger, d.Metrics)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"success":    true,
			"status":     "ok",
			"request_id": middleware.RequestIDFromContext(c.UserContext()),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterOnboardingRoutes(api, provisioning.NewHandler(orchestrator, d.Logger), d)
	RegisterClinicRoutes(api, logo.NewHandler(logos, d.Logger))

	return nil
}

func identityProvider(d Deps) (provisioning.IdentityProvider, error) {
	switch d.Cfg.IdentityBackend {
	case config.IdentityBackendHTTP:
		return identity.NewHTTPProvider(identity.HTTPConfig{
			BaseURL:    d.Cfg.IdentityURL,
			ServiceKey: d.Cfg.IdentityServiceKey,
		}), nil
	case config.IdentityBackendPostgres, "":
		if d.DB != nil {
			return identity.NewPostgresProvider(d.DB), nil
		}
		d.Logger.Warn("no database configured, using in-memory identity provider")
		return identity.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown identity backend %q", d.Cfg.IdentityBackend)
	}
}
