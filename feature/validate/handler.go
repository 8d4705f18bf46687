package validate

import (
	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for validation.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the validation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/sync/validate", h.HandleValidate)
}

// HandleValidate validates all mappings. Pass schema=true to also check the table columns.
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	report, err := h.service.Validate(c.Context(), Options{Schema: c.QueryBool("schema", false)})
	if err != nil {
		l.Error("Validation failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
