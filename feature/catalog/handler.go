package catalog

import (
	"strings"

	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the sync engine over HTTP for operators.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/:type", h.HandleRunSync)
	group.Get("/events", h.HandleListEvents)

	app.Get("/mappings/:store/:code", h.HandleGetMappings)
}

// HandleRunSync triggers one sync run of the given type.
// @Summary Run Sync
// @Description Run one sync of the given type (products, prices), optionally limited to specific stores.
// @Tags sync
// @Produce json
// @Param type path string true "Sync type (products, prices)"
// @Param stores query string false "Comma-separated store IDs"
// @Success 200 {object} models.SyncOutcome "Sync Outcome"
// @Router /sync/{type} [post]
func (h *Handler) HandleRunSync(c *fiber.Ctx) error {
	syncType := c.Params("type")
	l := logger.WithRayID(h.service.logger, c)

	var storeIDs []string
	if raw := c.Query("stores"); raw != "" {
		storeIDs = strings.Split(raw, ",")
	}

	outcome, err := h.service.Run(c.Context(), syncType, storeIDs)
	if err != nil {
		l.Error("Sync run rejected", zap.String("type", syncType), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(outcome)
}

// HandleListEvents returns the most recent sync events.
// @Summary List Sync Events
// @Description List recent sync runs with their aggregate counts.
// @Tags sync
// @Produce json
// @Param limit query int false "Maximum number of events (default 20)"
// @Success 200 {array} models.SyncEvent "Sync Events"
// @Router /sync/events [get]
func (h *Handler) HandleListEvents(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	events, err := h.service.RecentEvents(c.QueryInt("limit"))
	if err != nil {
		l.Error("Listing sync events failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(events)
}

// HandleGetMappings returns the recorded mappings for one item in one store.
// @Summary Get Mappings
// @Description Get the storefront identifiers recorded for a source item code.
// @Tags sync
// @Produce json
// @Param store path string true "Store ID"
// @Param code path string true "Source item code"
// @Success 200 {array} models.ProductMapping "Mappings"
// @Router /mappings/{store}/{code} [get]
func (h *Handler) HandleGetMappings(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	rows, err := h.service.Mappings(c.Params("store"), c.Params("code"))
	if err != nil {
		l.Error("Mapping lookup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(rows)
}
