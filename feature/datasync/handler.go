package datasync

import (
	"errors"

	"dict-manager/core/logger"
	"dict-manager/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for startup and shutdown reconciliation.
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
	group.Get("/startup", h.HandleStartupStatus)
	group.Post("/startup", h.HandleStartupChoice)
	group.Post("/startup/auto", h.HandleStartupAuto)
	group.Get("/shutdown", h.HandleExitStatus)
	group.Post("/shutdown", h.HandleExitChoice)
	group.Post("/shutdown/auto", h.HandleExitAuto)
}

// HandleStartupStatus returns the startup analysis and its prompt.
// @Summary Startup Sync Status
// @Tags sync
// @Produce json
// @Success 200 {object} StartupView
// @Router /sync/startup [get]
func (h *Handler) HandleStartupStatus(c *fiber.Ctx) error {
	view, err := h.service.Startup(c.Context())
	if err != nil {
		return h.fail(c, "Startup analysis failed", err)
	}
	return c.JSON(view)
}

// HandleStartupChoice applies the user's startup choice.
// @Summary Apply Startup Choice
// @Tags sync
// @Accept json
// @Produce json
// @Param choice body reconcile.StartupChoice true "Choice"
// @Success 200 {object} reconcile.Result
// @Failure 409 {object} reconcile.Result "Cancelled"
// @Router /sync/startup [post]
func (h *Handler) HandleStartupChoice(c *fiber.Ctx) error {
	var choice reconcile.StartupChoice
	if err := c.BodyParser(&choice); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.result(c, "Startup choice failed", h.service.ApplyStartup(c.Context(), choice))
}

// HandleStartupAuto runs the automatic startup policy.
// @Summary Run Startup Sync
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sync/startup/auto [post]
func (h *Handler) HandleStartupAuto(c *fiber.Ctx) error {
	out, err := h.service.AutoStartup(c.Context())
	if err != nil {
		return h.fail(c, "Startup sync failed", err)
	}
	return c.JSON(out)
}

// HandleExitStatus returns the shutdown analysis and its prompt.
// @Summary Shutdown Sync Status
// @Tags sync
// @Produce json
// @Success 200 {object} ExitView
// @Router /sync/shutdown [get]
func (h *Handler) HandleExitStatus(c *fiber.Ctx) error {
	view, err := h.service.Exit(c.Context())
	if err != nil {
		return h.fail(c, "Shutdown analysis failed", err)
	}
	return c.JSON(view)
}

// HandleExitChoice applies the user's shutdown choice.
// @Summary Apply Shutdown Choice
// @Tags sync
// @Accept json
// @Produce json
// @Param choice body reconcile.ExitChoice true "Choice"
// @Success 200 {object} reconcile.Result
// @Router /sync/shutdown [post]
func (h *Handler) HandleExitChoice(c *fiber.Ctx) error {
	var choice reconcile.ExitChoice
	if err := c.BodyParser(&choice); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return h.result(c, "Shutdown choice failed", h.service.ApplyExit(c.Context(), choice))
}

// HandleExitAuto runs the automatic shutdown policy.
// @Summary Run Shutdown Sync
// @Tags sync
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /sync/shutdown/auto [post]
func (h *Handler) HandleExitAuto(c *fiber.Ctx) error {
	out, err := h.service.AutoExit(c.Context())
	if err != nil {
		return h.fail(c, "Shutdown sync failed", err)
	}
	return c.JSON(out)
}

// result maps a Result to a response. Cancellations are 409 so clients can
// tell an abort from a fault.
func (h *Handler) result(c *fiber.Ctx, msg string, res reconcile.Result) error {
	switch {
	case res.Success:
		return c.JSON(res)
	case res.Cancelled():
		return c.Status(fiber.StatusConflict).JSON(res)
	case errors.Is(res.Err(), reconcile.ErrInvalidAction):
		return c.Status(fiber.StatusBadRequest).JSON(res)
	default:
		logger.WithRayID(h.service.logger, c).Error(msg, zap.String("error", res.Error))
		return c.Status(fiber.StatusInternalServerError).JSON(res)
	}
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
