package dictionary

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"dict-manager/feature/dictionary/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *Store) {
	app := fiber.New()
	store := newTestStore(t)
	NewHandler(NewService(store, nil, zap.NewNop())).RegisterRoutes(app)
	return app, store
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func TestHandleGames(t *testing.T) {
	app, _ := setupTestApp(t)

	status, body := doJSON(t, app, "POST", "/games", `{"name":"Dragon Quest","code":"dq"}`)
	require.Equal(t, fiber.StatusCreated, status)
	var game models.Game
	require.NoError(t, json.Unmarshal(body, &game))
	assert.Equal(t, "dq", game.Code)

	status, _ = doJSON(t, app, "POST", "/games", `{"name":"Dragon Quest"}`)
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = doJSON(t, app, "POST", "/games", `{"name":"X","code":"no-dash"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = doJSON(t, app, "GET", "/games", "")
	require.Equal(t, fiber.StatusOK, status)
	var summaries []GameSummary
	require.NoError(t, json.Unmarshal(body, &summaries))
	require.Len(t, summaries, 1)
	assert.Zero(t, summaries[0].EntryCount)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/games/%d", game.ID+100), "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, body = doJSON(t, app, "PUT", fmt.Sprintf("/games/%d", game.ID), `{"name":"DQ"}`)
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(body, &game))
	assert.Equal(t, "DQ", game.Name)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/games/%d", game.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, "GET", "/games/abc", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestHandleEntries(t *testing.T) {
	app, store := setupTestApp(t)

	_, body := doJSON(t, app, "POST", "/games", `{"name":"Game"}`)
	var game models.Game
	require.NoError(t, json.Unmarshal(body, &game))
	category, err := store.Categories.GetByName(context.Background(), "名詞")
	require.NoError(t, err)

	payload := fmt.Sprintf(`{"game_id":%d,"category_id":%d,"reading":"けん","word":"剣"}`, game.ID, category.ID)
	status, body := doJSON(t, app, "POST", "/entries", payload)
	require.Equal(t, fiber.StatusCreated, status)
	var entry models.Entry
	require.NoError(t, json.Unmarshal(body, &entry))

	status, body = doJSON(t, app, "GET", "/entries/search?q=%E5%89%A3", "")
	require.Equal(t, fiber.StatusOK, status)
	var results []models.EntryWithDetails
	require.NoError(t, json.Unmarshal(body, &results))
	require.Len(t, results, 1)
	assert.Equal(t, "Game", results[0].GameName)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/games/%d/entries", game.ID), "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/categories/%d", category.ID), "")
	assert.Equal(t, fiber.StatusConflict, status)

	status, _ = doJSON(t, app, "DELETE", fmt.Sprintf("/entries/%d", entry.ID), "")
	assert.Equal(t, fiber.StatusNoContent, status)

	status, _ = doJSON(t, app, "GET", fmt.Sprintf("/entries/%d", entry.ID), "")
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestHandleSuggestReading_RequiresWord(t *testing.T) {
	app, _ := setupTestApp(t)

	status, _ := doJSON(t, app, "GET", "/entries/reading", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body := doJSON(t, app, "GET", "/entries/reading?word=abc", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(body), `"reading":""`)
}
