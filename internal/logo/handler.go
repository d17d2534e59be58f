package logo

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"
)

// Handler serves clinic logos.
type Handler struct {
	service *Service
	logger  *slog.Logger
}

// NewHandler builds the logo HTTP handler.
func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Get streams the logo for the :slug route parameter.
func (h *Handler) Get(c *fiber.Ctx) error {
	slug := c.Params("slug")
	img, err := h.service.Fetch(c.UserContext(), slug)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return c.Status(http.StatusNotFound).JSON(fiber.Map{"success": false, "error": "clinic logo not found"})
		case errors.Is(err, ErrUpstream):
			h.logger.Warn("clinic logo fetch failed", "slug", slug, "error", err)
			return c.Status(http.StatusBadGateway).JSON(fiber.Map{"success": false, "error": "clinic logo unavailable"})
		default:
			h.logger.Error("clinic logo lookup failed", "slug", slug, "error", err)
			return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "internal server error"})
		}
	}

	c.Set(fiber.HeaderContentType, img.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Status(http.StatusOK).Send(img.Body)
}
