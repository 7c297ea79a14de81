package dictionary

import (
	"context"
	"errors"
	"testing"

	"dict-manager/core/database"
	"dict-manager/feature/dictionary/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := NewStore(db)
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestStore_InitSeedsCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	categories, err := store.Categories.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 3)
	assert.Equal(t, "名詞", categories[0].Name)
	assert.Equal(t, "品詞なし", categories[1].Name)
	assert.Equal(t, "人名", categories[2].Name)
	assert.Equal(t, "人名", categories[2].VendorName(models.VendorATOK))

	// Seeding again is a no-op
	require.NoError(t, store.Init(ctx))
	n, err := store.Categories.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestGameRepository_Create(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	game, err := store.Games.Create(ctx, NewGame{Name: "Final Fantasy XIV"})
	require.NoError(t, err)
	assert.Equal(t, "finalfantasyxiv", game.Code)
	assert.NotZero(t, game.ID)

	// Name-derived code collides and gets a suffix
	other, err := store.Games.Create(ctx, NewGame{Name: "Final-Fantasy XIV"})
	require.NoError(t, err)
	assert.Equal(t, "finalfantasyxiv1", other.Code)

	_, err = store.Games.Create(ctx, NewGame{Name: "Final Fantasy XIV"})
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = store.Games.Create(ctx, NewGame{Name: "Bad", Code: "has space"})
	assert.True(t, errors.Is(err, ErrInvalidCode))

	_, err = store.Games.Create(ctx, NewGame{Name: "  "})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = store.Games.Create(ctx, NewGame{Name: "Line\nTwo"})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = store.Games.Update(ctx, other.ID, GameUpdate{Name: ptr("Line\nTwo")})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	jp, err := store.Games.Create(ctx, NewGame{Name: "ゼルダの伝説"})
	require.NoError(t, err)
	assert.Equal(t, "game", jp.Code)
}

func TestGameRepository_Lookups(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	game, err := store.Games.Create(ctx, NewGame{Name: "Persona", Code: "p5"})
	require.NoError(t, err)

	byCode, err := store.Games.GetByCode(ctx, "p5")
	require.NoError(t, err)
	require.NotNil(t, byCode)
	assert.Equal(t, game.ID, byCode.ID)

	byName, err := store.Games.GetByName(ctx, "Persona")
	require.NoError(t, err)
	require.NotNil(t, byName)

	missing, err := store.Games.GetByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)

	updated, err := store.Games.Update(ctx, game.ID, GameUpdate{Name: ptr("Persona 5")})
	require.NoError(t, err)
	assert.Equal(t, "Persona 5", updated.Name)
	assert.Equal(t, "p5", updated.Code)

	_, err = store.Games.Update(ctx, game.ID, GameUpdate{Code: ptr("toolongcodeforagame")})
	assert.True(t, errors.Is(err, ErrInvalidCode))

	none, err := store.Games.Update(ctx, 999, GameUpdate{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestGameRepository_DeleteCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	game, err := store.Games.Create(ctx, NewGame{Name: "Game"})
	require.NoError(t, err)
	category, err := store.Categories.GetByName(ctx, "名詞")
	require.NoError(t, err)

	for _, w := range []string{"剣", "盾"} {
		_, err := store.Entries.Create(ctx, NewEntry{GameID: game.ID, CategoryID: category.ID, Reading: "よみ", Word: w})
		require.NoError(t, err)
	}

	deleted, err := store.Games.Delete(ctx, game.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	n, err := store.Entries.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	deleted, err = store.Games.Delete(ctx, game.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestCategoryRepository_DeleteInUse(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	game, err := store.Games.Create(ctx, NewGame{Name: "Game"})
	require.NoError(t, err)
	category, err := store.Categories.Create(ctx, NewCategory{Name: "地名", GoogleImeName: ptr("地名")})
	require.NoError(t, err)
	entry, err := store.Entries.Create(ctx, NewEntry{GameID: game.ID, CategoryID: category.ID, Reading: "とうきょう", Word: "東京"})
	require.NoError(t, err)

	_, err = store.Categories.Delete(ctx, category.ID)
	assert.True(t, errors.Is(err, ErrCategoryInUse))

	_, err = store.Entries.Delete(ctx, entry.ID)
	require.NoError(t, err)

	deleted, err := store.Categories.Delete(ctx, category.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestCategoryRepository_Update(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	category, err := store.Categories.GetByName(ctx, "名詞")
	require.NoError(t, err)

	updated, err := store.Categories.Update(ctx, category.ID, CategoryUpdate{MsImeName: ptr("固有名詞"), AtokName: ptr("")})
	require.NoError(t, err)
	assert.Equal(t, "固有名詞", updated.VendorName(models.VendorMS))
	assert.Nil(t, updated.AtokName)
	assert.Equal(t, models.FallbackLabel, updated.VendorName(models.VendorATOK))

	_, err = store.Categories.Update(ctx, category.ID, CategoryUpdate{Name: ptr("人名")})
	assert.True(t, errors.Is(err, ErrDuplicate))

	_, err = store.Categories.Update(ctx, category.ID, CategoryUpdate{Name: ptr("名\r\n詞")})
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = store.Categories.Create(ctx, NewCategory{Name: "bad\nname"})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestEntryRepository(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	game, err := store.Games.Create(ctx, NewGame{Name: "Game"})
	require.NoError(t, err)
	other, err := store.Games.Create(ctx, NewGame{Name: "Other"})
	require.NoError(t, err)
	category, err := store.Categories.GetByName(ctx, "人名")
	require.NoError(t, err)

	_, err = store.Entries.Create(ctx, NewEntry{GameID: game.ID, CategoryID: category.ID, Reading: "たろう", Word: "太郎", Description: ptr("主人公")})
	require.NoError(t, err)
	_, err = store.Entries.Create(ctx, NewEntry{GameID: game.ID, CategoryID: category.ID, Reading: "あきら", Word: "明"})
	require.NoError(t, err)
	_, err = store.Entries.Create(ctx, NewEntry{GameID: other.ID, CategoryID: category.ID, Reading: "たろう", Word: "太朗"})
	require.NoError(t, err)

	t.Run("ordered by reading", func(t *testing.T) {
		entries, err := store.Entries.GetByGame(ctx, game.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "あきら", entries[0].Reading)
	})

	t.Run("find by natural key", func(t *testing.T) {
		found, err := store.Entries.Find(ctx, game.ID, category.ID, "たろう", "太郎")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "主人公", found.DescriptionText())

		missing, err := store.Entries.Find(ctx, game.ID, category.ID, "たろう", "太朗")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("search", func(t *testing.T) {
		results, err := store.Entries.Search(ctx, "たろう", nil)
		require.NoError(t, err)
		assert.Len(t, results, 2)

		results, err = store.Entries.Search(ctx, "主人公", &game.ID)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Game", results[0].GameName)
		assert.Equal(t, "人名", results[0].CategoryName)
	})

	t.Run("counts", func(t *testing.T) {
		n, err := store.CountEntries(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		n, err = store.Entries.CountByGame(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		n, err = store.CountGames(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
	})

	t.Run("invalid reference", func(t *testing.T) {
		_, err := store.Entries.Create(ctx, NewEntry{GameID: 999, CategoryID: category.ID, Reading: "x", Word: "y"})
		assert.True(t, errors.Is(err, ErrInvalidReference))
	})

	t.Run("delete by game", func(t *testing.T) {
		n, err := store.Entries.DeleteByGame(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestStore_TransactionRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.Games.Create(ctx, NewGame{Name: "Temp"}); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	n, err := store.CountGames(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func ptr[T any](v T) *T {
	return &v
}
