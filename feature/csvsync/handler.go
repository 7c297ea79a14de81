package csvsync

import (
	"errors"
	"strconv"

	"dict-manager/core/logger"
	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DirRequest names a directory. An empty Dir selects the configured default.
type DirRequest struct {
	Dir string `json:"dir"`
}

// Handler handles HTTP requests for CSV and IME exports.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the csv routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/csv")
	group.Post("/export", h.HandleExport)
	group.Post("/import", h.HandleImport)
	group.Post("/pull", h.HandlePull)
	group.Get("/paths", h.HandleSuggestPaths)
	group.Post("/ime/:gameId", h.HandleExportIME)
	group.Post("/msime/:gameId", h.HandleExportMicrosoftIME)
}

// HandleExport writes the store to the CSV directory.
// @Summary Export CSV Directory
// @Tags csv
// @Accept json
// @Produce json
// @Param request body DirRequest false "Target directory"
// @Success 200 {object} map[string]interface{} "Written files"
// @Router /csv/export [post]
func (h *Handler) HandleExport(c *fiber.Ctx) error {
	var req DirRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	files, err := h.service.Export(c.Context(), req.Dir)
	if err != nil {
		return h.fail(c, "CSV export failed", err)
	}
	return c.JSON(fiber.Map{"files": files})
}

// HandleImport merges the CSV directory into the store.
// @Summary Import CSV Directory
// @Tags csv
// @Accept json
// @Produce json
// @Param request body DirRequest false "Source directory"
// @Success 200 {object} ImportSummary
// @Failure 404 {object} map[string]string "Directory not found"
// @Router /csv/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	var req DirRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	summary, err := h.service.Import(c.Context(), req.Dir)
	if err != nil {
		return h.fail(c, "CSV import failed", err)
	}
	return c.JSON(summary)
}

// HandlePull restores the CSV directory from the object storage mirror.
// @Summary Pull CSV Mirror
// @Tags csv
// @Accept json
// @Produce json
// @Param request body DirRequest false "Target directory"
// @Success 200 {object} map[string]interface{} "Written files"
// @Failure 409 {object} map[string]string "Mirror disabled"
// @Router /csv/pull [post]
func (h *Handler) HandlePull(c *fiber.Ctx) error {
	var req DirRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}

	files, err := h.service.Pull(c.Context(), req.Dir)
	if err != nil {
		return h.fail(c, "CSV pull failed", err)
	}
	return c.JSON(fiber.Map{"files": files})
}

// HandleSuggestPaths proposes dated export file names.
// @Summary Suggest Export Paths
// @Tags csv
// @Produce json
// @Param game_id query int false "Game ID"
// @Success 200 {object} SuggestedPaths
// @Router /csv/paths [get]
func (h *Handler) HandleSuggestPaths(c *fiber.Ctx) error {
	var gameID *uint
	if raw := c.Query("game_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid game_id"})
		}
		id := uint(v)
		gameID = &id
	}

	paths, err := h.service.SuggestPaths(c.Context(), gameID)
	if err != nil {
		return h.fail(c, "Suggest paths failed", err)
	}
	return c.JSON(paths)
}

// HandleExportIME writes a vendor dictionary for one game.
// @Summary Export IME Dictionary
// @Tags csv
// @Produce json
// @Param gameId path int true "Game ID"
// @Param vendor query string true "google, ms or atok"
// @Param path query string false "Output path"
// @Success 200 {object} map[string]string
// @Router /csv/ime/{gameId} [post]
func (h *Handler) HandleExportIME(c *fiber.Ctx) error {
	gameID, err := gameIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	vendor, err := models.ParseVendor(c.Query("vendor"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	path, err := h.service.ExportIME(c.Context(), gameID, vendor, c.Query("path"))
	if err != nil {
		return h.fail(c, "IME export failed", err)
	}
	return c.JSON(fiber.Map{"path": path})
}

// HandleExportMicrosoftIME writes the MS-IME text dictionary for one game.
// @Summary Export Microsoft IME Dictionary
// @Tags csv
// @Produce json
// @Param gameId path int true "Game ID"
// @Success 200 {object} map[string]string
// @Failure 422 {object} map[string]string "Game has no entries"
// @Router /csv/msime/{gameId} [post]
func (h *Handler) HandleExportMicrosoftIME(c *fiber.Ctx) error {
	gameID, err := gameIDParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	path, err := h.service.ExportMicrosoftIME(c.Context(), gameID)
	if err != nil {
		return h.fail(c, "Microsoft IME export failed", err)
	}
	return c.JSON(fiber.Map{"path": path})
}

func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrDirectoryNotFound), errors.Is(err, dictionary.ErrNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrMirrorDisabled):
		status = fiber.StatusConflict
	case errors.Is(err, ErrNoEntries):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, models.ErrUnknownVendor), errors.Is(err, ErrInvalidFile):
		status = fiber.StatusBadRequest
	default:
		if s := dictionary.StatusFor(err); s != fiber.StatusInternalServerError {
			status = s
		}
	}
	if status >= fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func gameIDParam(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("gameId"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid game id")
	}
	return uint(id), nil
}
