package csvsync

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"dict-manager/core/database"
	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const csvDir = "/work/csv"

func setupCodec(t *testing.T) (*Codec, *dictionary.Store, afero.Fs) {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	store := dictionary.NewStore(db)
	require.NoError(t, store.Init(context.Background()))

	fs := afero.NewMemMapFs()
	codec := NewCodec(store, fs, zap.NewNop())
	codec.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return codec, store, fs
}

func seedGame(t *testing.T, store *dictionary.Store, name, code string, words map[string][2]string) *models.Game {
	t.Helper()
	ctx := context.Background()
	game, err := store.Games.Create(ctx, dictionary.NewGame{Name: name, Code: code})
	require.NoError(t, err)
	for word, v := range words {
		category, err := store.Categories.GetByName(ctx, v[0])
		require.NoError(t, err)
		require.NotNil(t, category, v[0])
		_, err = store.Entries.Create(ctx, dictionary.NewEntry{
			GameID:      game.ID,
			CategoryID:  category.ID,
			Reading:     v[1],
			Word:        word,
			Description: models.StringPtr("desc " + word),
		})
		require.NoError(t, err)
	}
	return game
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestExportFiles_Layout(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	seedGame(t, store, "Chrono Trigger", "ct", map[string][2]string{
		"剣":  {"名詞", "けん"},
		"盾":  {"名詞", "たて"},
		"魔王": {"人名", "まおう"},
	})
	seedGame(t, store, "Empty Game", "empty", nil)

	files, err := codec.ExportFiles(ctx, csvDir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(csvDir, "games.csv"),
		filepath.Join(csvDir, "categories.csv"),
		filepath.Join(csvDir, "game-ct.csv"),
	}, files)

	exists, err := afero.Exists(fs, filepath.Join(csvDir, "game-empty.csv"))
	require.NoError(t, err)
	assert.False(t, exists, "empty games produce no file")

	games := readFile(t, fs, filepath.Join(csvDir, "games.csv"))
	assert.True(t, strings.HasPrefix(games, "id,name,code,created_at,updated_at\n"))
	assert.Contains(t, games, ",Empty Game,empty,")

	categories := readFile(t, fs, filepath.Join(csvDir, "categories.csv"))
	assert.True(t, strings.HasPrefix(categories, "id,name,google_ime_name,ms_ime_name,atok_name\n"))

	lines := strings.Split(strings.TrimSpace(readFile(t, fs, filepath.Join(csvDir, "game-ct.csv"))), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "# Game: Chrono Trigger (Code: ct)", lines[0])
	assert.Equal(t, "category_name,reading,word,description", lines[1])
	assert.Equal(t, "名詞,けん,剣,desc 剣", lines[2])
	assert.Equal(t, "名詞,たて,盾,desc 盾", lines[3])
	assert.Equal(t, "人名,まおう,魔王,desc 魔王", lines[4])
}

func TestImportFile_Idempotent(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	path := filepath.Join(csvDir, "game-ff.csv")
	require.NoError(t, afero.WriteFile(fs, path, []byte(
		"# Game: Final Fantasy (Code: ff)\n"+
			"category_name,reading,word,description\n"+
			"人名,くらうど,クラウド,主人公\n"+
			"地名,みっどがる,ミッドガル,\n"), 0o644))

	first, err := codec.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, first.GamesCreated)
	assert.Equal(t, 1, first.CategoriesCreated)
	assert.Equal(t, 2, first.EntriesCreated)

	second, err := codec.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, second.GamesCreated)
	assert.Zero(t, second.EntriesCreated)
	assert.Equal(t, 2, second.EntriesSkipped)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	game, err := store.Games.GetByName(ctx, "Final Fantasy")
	require.NoError(t, err)
	require.NotNil(t, game)
	assert.Equal(t, "ff", game.Code)

	created, err := store.Categories.GetByName(ctx, "地名")
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.FallbackLabel, created.VendorName(models.VendorGoogle))

	entry, err := store.Entries.Find(ctx, game.ID, created.ID, "みっどがる", "ミッドガル")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Nil(t, entry.Description)
}

func TestRoundTrip(t *testing.T) {
	codec, store, _ := setupCodec(t)
	ctx := context.Background()

	game := seedGame(t, store, "Mother 2", "mother2", map[string][2]string{
		"ネス":   {"人名", "ねす"},
		"ポーラ":  {"人名", "ぽーら"},
		"バット":  {"名詞", "ばっと"},
		"オネット": {"品詞なし", "おねっと"},
	})
	before, err := store.Entries.GetByGame(ctx, game.ID)
	require.NoError(t, err)

	require.NoError(t, codec.ExportDirectory(ctx, csvDir))

	deleted, err := store.Games.Delete(ctx, game.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = codec.ImportFile(ctx, filepath.Join(csvDir, "game-mother2.csv"))
	require.NoError(t, err)

	restored, err := store.Games.GetByName(ctx, "Mother 2")
	require.NoError(t, err)
	require.NotNil(t, restored)
	assert.Equal(t, "mother2", restored.Code)

	after, err := store.Entries.GetByGame(ctx, restored.ID)
	require.NoError(t, err)
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Reading, after[i].Reading)
		assert.Equal(t, before[i].Word, after[i].Word)
		assert.Equal(t, before[i].DescriptionText(), after[i].DescriptionText())
		assert.Equal(t, before[i].CategoryID, after[i].CategoryID)
	}
}

func TestRoundTrip_HashCategory(t *testing.T) {
	codec, store, _ := setupCodec(t)
	ctx := context.Background()

	category, err := store.Categories.Create(ctx, dictionary.NewCategory{Name: "#tag"})
	require.NoError(t, err)
	game, err := store.Games.Create(ctx, dictionary.NewGame{Name: "Tagged", Code: "tagged"})
	require.NoError(t, err)
	_, err = store.Entries.Create(ctx, dictionary.NewEntry{GameID: game.ID, CategoryID: category.ID, Reading: "a", Word: "A"})
	require.NoError(t, err)

	require.NoError(t, codec.ExportDirectory(ctx, csvDir))
	deleted, err := store.Games.Delete(ctx, game.ID)
	require.NoError(t, err)
	require.True(t, deleted)

	summary, err := codec.Import(ctx, csvDir)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.EntriesCreated)
	assert.Zero(t, summary.CategoriesCreated)

	restored, err := store.Games.GetByName(ctx, "Tagged")
	require.NoError(t, err)
	require.NotNil(t, restored)
	entries, err := store.Entries.GetByGame(ctx, restored.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, category.ID, entries[0].CategoryID)
}

func TestImportFile_TrimsFields(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	seedGame(t, store, "Okami", "okami", map[string][2]string{"天照": {"名詞", "あまてらす"}})

	path := filepath.Join(csvDir, "game-okami.csv")
	require.NoError(t, afero.WriteFile(fs, path, []byte(
		"# Game: Okami (Code: okami)\n"+
			"category_name,reading,word,description\n"+
			"名詞, あまてらす , 天照 ,\n"), 0o644))

	summary, err := codec.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, summary.EntriesCreated)
	assert.Equal(t, 1, summary.EntriesSkipped)

	n, err := store.CountEntries(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestImportFile_CommentFallbacks(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	_, err := store.Games.Create(ctx, dictionary.NewGame{Name: "Taken", Code: "zelda"})
	require.NoError(t, err)

	files := map[string]string{
		"game-legacy.csv":   "# Game: Old Game (ID: 7)\ncategory_name,reading,word,description\n名詞,けん,剣,\n",
		"game-clash.csv":    "# Game: Zelda (Code: zelda)\ncategory_name,reading,word,description\n名詞,りんく,リンク,\n",
		"game-nameless.csv": "category_name,reading,word,description\n名詞,たて,盾,\n",
	}
	for name, content := range files {
		require.NoError(t, afero.WriteFile(fs, filepath.Join(csvDir, name), []byte(content), 0o644))
	}

	for name := range files {
		_, err := codec.ImportFile(ctx, filepath.Join(csvDir, name))
		require.NoError(t, err, name)
	}

	legacy, err := store.Games.GetByName(ctx, "Old Game")
	require.NoError(t, err)
	require.NotNil(t, legacy)
	assert.Equal(t, "oldgame", legacy.Code)

	clash, err := store.Games.GetByName(ctx, "Zelda")
	require.NoError(t, err)
	require.NotNil(t, clash)
	assert.Equal(t, "zelda1", clash.Code)

	nameless, err := store.Games.GetByName(ctx, "game-nameless")
	require.NoError(t, err)
	require.NotNil(t, nameless)
	assert.Equal(t, "gamenameless", nameless.Code)
}

func TestImportFile_InvalidHeader(t *testing.T) {
	codec, _, fs := setupCodec(t)
	path := filepath.Join(csvDir, "game-bad.csv")
	require.NoError(t, afero.WriteFile(fs, path, []byte("a,b,c\n1,2,3\n"), 0o644))

	_, err := codec.ImportFile(context.Background(), path)
	assert.True(t, errors.Is(err, ErrInvalidFile))
}

func TestImport_Directory(t *testing.T) {
	ctx := context.Background()

	t.Run("missing directory", func(t *testing.T) {
		codec, _, _ := setupCodec(t)
		err := codec.ImportDirectory(ctx, "/nope")
		assert.True(t, errors.Is(err, ErrDirectoryNotFound))
	})

	t.Run("empty directory", func(t *testing.T) {
		codec, _, fs := setupCodec(t)
		require.NoError(t, fs.MkdirAll(csvDir, 0o755))
		summary, err := codec.Import(ctx, csvDir)
		require.NoError(t, err)
		assert.Equal(t, ImportSummary{}, *summary)
	})

	t.Run("manifests keep ids", func(t *testing.T) {
		codec, store, fs := setupCodec(t)
		require.NoError(t, afero.WriteFile(fs, filepath.Join(csvDir, "games.csv"), []byte(
			"id,name,code,created_at,updated_at\n"+
				"10,Tales,tales,2023-01-02T03:04:05Z,2023-01-02T03:04:05Z\n"+
				"11,No Code,,,\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(csvDir, "categories.csv"), []byte(
			"id,name,google_ime_name,ms_ime_name,atok_name\n"+
				"1,名詞,一般,一般,一般\n"+
				"20,技名,名詞,,固有名詞\n"), 0o644))
		require.NoError(t, afero.WriteFile(fs, filepath.Join(csvDir, "game-tales.csv"), []byte(
			"# Game: Tales (Code: tales)\ncategory_name,reading,word,description\n技名,まじんけん,魔神剣,\n"), 0o644))

		summary, err := codec.Import(ctx, csvDir)
		require.NoError(t, err)
		assert.Equal(t, 3, summary.Files)
		assert.Equal(t, 2, summary.GamesCreated)
		assert.Equal(t, 1, summary.CategoriesCreated)
		assert.Equal(t, 1, summary.EntriesCreated)

		tales, err := store.Games.GetByID(ctx, 10)
		require.NoError(t, err)
		require.NotNil(t, tales)
		assert.Equal(t, "tales", tales.Code)
		assert.Equal(t, 2023, tales.CreatedAt.Year())

		noCode, err := store.Games.GetByID(ctx, 11)
		require.NoError(t, err)
		require.NotNil(t, noCode)
		assert.Equal(t, "nocode", noCode.Code)

		skill, err := store.Categories.GetByID(ctx, 20)
		require.NoError(t, err)
		require.NotNil(t, skill)
		assert.Equal(t, "名詞", skill.VendorName(models.VendorGoogle))
		assert.Equal(t, models.FallbackLabel, skill.VendorName(models.VendorMS))

		seeded, err := store.Categories.GetByID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "名詞", seeded.Name)

		entries, err := store.Entries.GetByGame(ctx, 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, uint(20), entries[0].CategoryID)
	})
}

func TestExportIME(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	game := seedGame(t, store, "Pokemon", "pkmn", map[string][2]string{
		"ピカチュウ": {"名詞", "ぴかちゅう"},
		"サトシ":   {"人名", "さとし"},
	})

	path := "/out/pkmn-google.csv"
	require.NoError(t, codec.ExportIME(ctx, game.ID, models.VendorGoogle, path))
	content := readFile(t, fs, path)
	assert.NotContains(t, content, "reading")
	assert.Contains(t, content, "ぴかちゅう,ピカチュウ,一般\n")
	assert.Contains(t, content, "さとし,サトシ,人名\n")

	err := codec.ExportIME(ctx, game.ID, models.Vendor("kotoeri"), path)
	assert.True(t, errors.Is(err, models.ErrUnknownVendor))
}

func TestExportMicrosoftIME(t *testing.T) {
	codec, store, fs := setupCodec(t)
	ctx := context.Background()

	game := seedGame(t, store, "テストゲーム", "test1", map[string][2]string{
		"テスト": {"名詞", "てすと"},
		"ゲーム": {"名詞", "げーむ"},
	})

	path, err := codec.ExportMicrosoftIME(ctx, game.ID, "export")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("export", "test1.txt"), path)

	lines := strings.Split(strings.TrimSpace(readFile(t, fs, path)), "\n")
	assert.ElementsMatch(t, []string{"てすと\tテスト\t一般", "げーむ\tゲーム\t一般"}, lines)

	empty, err := store.Games.Create(ctx, dictionary.NewGame{Name: "空のゲーム", Code: "empty1"})
	require.NoError(t, err)
	_, err = codec.ExportMicrosoftIME(ctx, empty.ID, "export")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoEntries))
	assert.Contains(t, err.Error(), "IME export requires at least one entry")

	_, err = codec.ExportMicrosoftIME(ctx, 999, "export")
	assert.True(t, errors.Is(err, dictionary.ErrNotFound))
}

func TestSuggestPaths(t *testing.T) {
	codec, store, _ := setupCodec(t)
	ctx := context.Background()

	all, err := codec.SuggestPaths(ctx, nil, "out")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "all-games-2024-05-01.csv"), all.GitCSV)

	game, err := store.Games.Create(ctx, dictionary.NewGame{Name: "Star Ocean"})
	require.NoError(t, err)
	paths, err := codec.SuggestPaths(ctx, &game.ID, "out")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("out", "star-ocean-google-2024-05-01.csv"), paths.GoogleCSV)
	assert.Equal(t, filepath.Join("out", "star-ocean-atok-2024-05-01.csv"), paths.AtokCSV)
}
