package syncer

import (
	"errors"

	"catalog-sync/core/logger"
	"catalog-sync/feature/catalog"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for sync runs.
type Handler struct {
	service        *Service
	allowMutations bool
}

// NewHandler creates a new HTTP handler. When allowMutations is false only dry runs are accepted.
func NewHandler(service *Service, allowMutations bool) *Handler {
	return &Handler{service: service, allowMutations: allowMutations}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/sync", h.HandleSync)
}

// HandleSync runs a sync and returns its result.
// Query parameters: dry_run, force, deactivate_stale (booleans).
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	opts := Options{
		DryRun:          c.QueryBool("dry_run", false),
		Force:           c.QueryBool("force", false),
		DeactivateStale: c.QueryBool("deactivate_stale", false),
	}

	if !opts.DryRun && !h.allowMutations {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "server is read-only, only dry_run=true is allowed",
		})
	}

	res, err := h.service.Run(c.Context(), opts)
	switch {
	case err == nil:
		return c.JSON(res)
	case errors.Is(err, ErrRunInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case catalog.IsConfigurationError(err):
		l.Error("Catalog configuration invalid", zap.Error(err))
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": err.Error()})
	case IsGlobal(err):
		l.Error("Sync run aborted", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  err.Error(),
			"result": res,
		})
	default:
		l.Error("Sync run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}
