package dictionary

import (
	"errors"
	"strconv"

	"dict-manager/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for games, categories and entries.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the dictionary routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	games := app.Group("/games")
	games.Get("/", h.HandleListGames)
	games.Post("/", h.HandleCreateGame)
	games.Get("/:id", h.HandleGetGame)
	games.Put("/:id", h.HandleUpdateGame)
	games.Delete("/:id", h.HandleDeleteGame)
	games.Get("/:id/entries", h.HandleListGameEntries)

	categories := app.Group("/categories")
	categories.Get("/", h.HandleListCategories)
	categories.Post("/", h.HandleCreateCategory)
	categories.Get("/:id", h.HandleGetCategory)
	categories.Put("/:id", h.HandleUpdateCategory)
	categories.Delete("/:id", h.HandleDeleteCategory)

	entries := app.Group("/entries")
	entries.Get("/search", h.HandleSearchEntries)
	entries.Get("/reading", h.HandleSuggestReading)
	entries.Post("/", h.HandleCreateEntry)
	entries.Get("/:id", h.HandleGetEntry)
	entries.Put("/:id", h.HandleUpdateEntry)
	entries.Delete("/:id", h.HandleDeleteEntry)
}

// HandleListGames lists all games with their entry counts.
// @Summary List Games
// @Tags games
// @Produce json
// @Success 200 {array} GameSummary
// @Router /games [get]
func (h *Handler) HandleListGames(c *fiber.Ctx) error {
	games, err := h.service.GameSummaries(c.Context())
	if err != nil {
		return h.fail(c, "List games failed", err)
	}
	return c.JSON(games)
}

// HandleCreateGame creates a game.
// @Summary Create Game
// @Tags games
// @Accept json
// @Produce json
// @Param game body NewGame true "Game"
// @Success 201 {object} models.Game
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 409 {object} map[string]string "Duplicate name or code"
// @Router /games [post]
func (h *Handler) HandleCreateGame(c *fiber.Ctx) error {
	var in NewGame
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	game, err := h.service.store.Games.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create game failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(game)
}

// HandleGetGame returns one game.
// @Summary Get Game
// @Tags games
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {object} models.Game
// @Failure 404 {object} map[string]string "Not found"
// @Router /games/{id} [get]
func (h *Handler) HandleGetGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	game, err := h.service.store.Games.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, "Get game failed", err)
	}
	if game == nil {
		return notFound(c, "game")
	}
	return c.JSON(game)
}

// HandleUpdateGame updates a game's name or code.
// @Summary Update Game
// @Tags games
// @Accept json
// @Produce json
// @Param id path int true "Game ID"
// @Param game body GameUpdate true "Fields to change"
// @Success 200 {object} models.Game
// @Router /games/{id} [put]
func (h *Handler) HandleUpdateGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	var in GameUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	game, err := h.service.store.Games.Update(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "Update game failed", err)
	}
	if game == nil {
		return notFound(c, "game")
	}
	return c.JSON(game)
}

// HandleDeleteGame deletes a game and its entries.
// @Summary Delete Game
// @Tags games
// @Param id path int true "Game ID"
// @Success 204
// @Router /games/{id} [delete]
func (h *Handler) HandleDeleteGame(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	deleted, err := h.service.store.Games.Delete(c.Context(), id)
	if err != nil {
		return h.fail(c, "Delete game failed", err)
	}
	if !deleted {
		return notFound(c, "game")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListGameEntries lists a game's entries with category names.
// @Summary List Game Entries
// @Tags games
// @Produce json
// @Param id path int true "Game ID"
// @Success 200 {array} models.EntryWithDetails
// @Router /games/{id}/entries [get]
func (h *Handler) HandleListGameEntries(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	entries, err := h.service.store.Entries.GetByGameWithDetails(c.Context(), id)
	if err != nil {
		return h.fail(c, "List entries failed", err)
	}
	return c.JSON(entries)
}

// HandleListCategories lists all categories.
// @Summary List Categories
// @Tags categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories [get]
func (h *Handler) HandleListCategories(c *fiber.Ctx) error {
	categories, err := h.service.store.Categories.GetAll(c.Context())
	if err != nil {
		return h.fail(c, "List categories failed", err)
	}
	return c.JSON(categories)
}

// HandleCreateCategory creates a category.
// @Summary Create Category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body NewCategory true "Category"
// @Success 201 {object} models.Category
// @Router /categories [post]
func (h *Handler) HandleCreateCategory(c *fiber.Ctx) error {
	var in NewCategory
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	category, err := h.service.store.Categories.Create(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create category failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

// HandleGetCategory returns one category.
// @Summary Get Category
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Category
// @Router /categories/{id} [get]
func (h *Handler) HandleGetCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	category, err := h.service.store.Categories.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, "Get category failed", err)
	}
	if category == nil {
		return notFound(c, "category")
	}
	return c.JSON(category)
}

// HandleUpdateCategory updates a category.
// @Summary Update Category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body CategoryUpdate true "Fields to change"
// @Success 200 {object} models.Category
// @Router /categories/{id} [put]
func (h *Handler) HandleUpdateCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	var in CategoryUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	category, err := h.service.store.Categories.Update(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "Update category failed", err)
	}
	if category == nil {
		return notFound(c, "category")
	}
	return c.JSON(category)
}

// HandleDeleteCategory deletes an unused category.
// @Summary Delete Category
// @Tags categories
// @Param id path int true "Category ID"
// @Success 204
// @Failure 409 {object} map[string]string "Category in use"
// @Router /categories/{id} [delete]
func (h *Handler) HandleDeleteCategory(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	deleted, err := h.service.store.Categories.Delete(c.Context(), id)
	if err != nil {
		return h.fail(c, "Delete category failed", err)
	}
	if !deleted {
		return notFound(c, "category")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSearchEntries searches entries by text, optionally within one game.
// @Summary Search Entries
// @Tags entries
// @Produce json
// @Param q query string false "Search text"
// @Param game_id query int false "Game ID"
// @Success 200 {array} models.EntryWithDetails
// @Router /entries/search [get]
func (h *Handler) HandleSearchEntries(c *fiber.Ctx) error {
	var gameID *uint
	if raw := c.Query("game_id"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return badRequest(c, err)
		}
		id := uint(v)
		gameID = &id
	}
	results, err := h.service.store.Entries.Search(c.Context(), c.Query("q"), gameID)
	if err != nil {
		return h.fail(c, "Search entries failed", err)
	}
	return c.JSON(results)
}

// HandleSuggestReading proposes a hiragana reading for a word.
// @Summary Suggest Reading
// @Tags entries
// @Produce json
// @Param word query string true "Word"
// @Success 200 {object} map[string]string
// @Router /entries/reading [get]
func (h *Handler) HandleSuggestReading(c *fiber.Ctx) error {
	word := c.Query("word")
	if word == "" {
		return badRequest(c, errors.New("word is required"))
	}
	return c.JSON(fiber.Map{"word": word, "reading": h.service.SuggestReading(word)})
}

// HandleCreateEntry creates an entry.
// @Summary Create Entry
// @Tags entries
// @Accept json
// @Produce json
// @Param entry body NewEntry true "Entry"
// @Success 201 {object} models.Entry
// @Router /entries [post]
func (h *Handler) HandleCreateEntry(c *fiber.Ctx) error {
	var in NewEntry
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	entry, err := h.service.AddEntry(c.Context(), in)
	if err != nil {
		return h.fail(c, "Create entry failed", err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleGetEntry returns one entry.
// @Summary Get Entry
// @Tags entries
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} models.Entry
// @Router /entries/{id} [get]
func (h *Handler) HandleGetEntry(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	entry, err := h.service.store.Entries.GetByID(c.Context(), id)
	if err != nil {
		return h.fail(c, "Get entry failed", err)
	}
	if entry == nil {
		return notFound(c, "entry")
	}
	return c.JSON(entry)
}

// HandleUpdateEntry updates an entry.
// @Summary Update Entry
// @Tags entries
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param entry body EntryUpdate true "Fields to change"
// @Success 200 {object} models.Entry
// @Router /entries/{id} [put]
func (h *Handler) HandleUpdateEntry(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	var in EntryUpdate
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, err)
	}
	entry, err := h.service.store.Entries.Update(c.Context(), id, in)
	if err != nil {
		return h.fail(c, "Update entry failed", err)
	}
	if entry == nil {
		return notFound(c, "entry")
	}
	return c.JSON(entry)
}

// HandleDeleteEntry deletes an entry.
// @Summary Delete Entry
// @Tags entries
// @Param id path int true "Entry ID"
// @Success 204
// @Router /entries/{id} [delete]
func (h *Handler) HandleDeleteEntry(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return badRequest(c, err)
	}
	deleted, err := h.service.store.Entries.Delete(c.Context(), id)
	if err != nil {
		return h.fail(c, "Delete entry failed", err)
	}
	if !deleted {
		return notFound(c, "entry")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// fail logs err and maps it to a status code.
func (h *Handler) fail(c *fiber.Ctx, msg string, err error) error {
	status := StatusFor(err)
	if status >= fiber.StatusInternalServerError {
		logger.WithRayID(h.service.logger, c).Error(msg, zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// StatusFor maps dictionary errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCode), errors.Is(err, ErrInvalidReference):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrDuplicate), errors.Is(err, ErrCategoryInUse):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func parseID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
}

func notFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}
