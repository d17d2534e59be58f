package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/retain-dental/retain/internal/logo"
	"github.com/retain-dental/retain/internal/middleware"
	"github.com/retain-dental/retain/internal/provisioning"
)

// RegisterOnboardingRoutes wires patient onboarding behind the signup rate
// limit and optional Idempotency-Key replay.
func RegisterOnboardingRoutes(api fiber.Router, h *provisioning.Handler, d Deps) {
	patients := api.Group("/patients")
	patients.Post("/onboard",
		middleware.SignupRateLimit(d.Cache, d.Cfg.SignupRatePerMinute, d.Metrics),
		middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger),
		h.Onboard,
	)
}

// RegisterClinicRoutes wires clinic branding endpoints.
func RegisterClinicRoutes(api fiber.Router, h *logo.Handler) {
	api.Get("/clinics/:slug/logo", h.Get)
}
