package csvsync

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"

	"dict-manager/core/reconcile"
	"dict-manager/feature/dictionary/models"

	"go.uber.org/zap"
)

var (
	gamesHeader      = []string{"id", "name", "code", "created_at", "updated_at"}
	categoriesHeader = []string{"id", "name", "google_ime_name", "ms_ime_name", "atok_name"}
	entriesHeader    = []string{"category_name", "reading", "word", "description"}
)

// ExportFiles writes the manifests and one file per non-empty game into dir
// and returns the written paths.
func (c *Codec) ExportFiles(ctx context.Context, dir string) ([]string, error) {
	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}

	games, err := c.store.Games.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load games: %w", err)
	}
	categories, err := c.store.Categories.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var written []string

	if len(games) > 0 {
		path := filepath.Join(dir, reconcile.GamesFile)
		if err := c.writeCSV(path, "", ',', gameRows(games)); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if len(categories) > 0 {
		path := filepath.Join(dir, reconcile.CategoriesFile)
		if err := c.writeCSV(path, "", ',', categoryRows(categories)); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}

	for _, game := range games {
		entries, err := c.store.Entries.GetByGame(ctx, game.ID)
		if err != nil {
			return written, fmt.Errorf("failed to load entries of %s: %w", game.Name, err)
		}
		if len(entries) == 0 {
			continue
		}

		rows := make([][]string, 0, len(entries)+1)
		rows = append(rows, entriesHeader)
		for _, e := range entries {
			rows = append(rows, []string{names[e.CategoryID], e.Reading, e.Word, e.DescriptionText()})
		}

		path := filepath.Join(dir, reconcile.GameFileName(game.Code))
		if err := c.writeCSV(path, gameComment(game)+"\n", ',', rows); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	c.logger.Info("Exported CSV directory", zap.String("dir", dir), zap.Int("files", len(written)))
	return written, nil
}

// gameComment is the first line of a per-game file.
func gameComment(g models.Game) string {
	return fmt.Sprintf("# Game: %s (Code: %s)", g.Name, g.Code)
}

func gameRows(games []models.Game) [][]string {
	rows := make([][]string, 0, len(games)+1)
	rows = append(rows, gamesHeader)
	for _, g := range games {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(g.ID), 10),
			g.Name,
			g.Code,
			g.CreatedAt.UTC().Format(timeLayout),
			g.UpdatedAt.UTC().Format(timeLayout),
		})
	}
	return rows
}

func categoryRows(categories []models.Category) [][]string {
	rows := make([][]string, 0, len(categories)+1)
	rows = append(rows, categoriesHeader)
	for _, cat := range categories {
		rows = append(rows, []string{
			strconv.FormatUint(uint64(cat.ID), 10),
			cat.Name,
			deref(cat.GoogleImeName),
			deref(cat.MsImeName),
			deref(cat.AtokName),
		})
	}
	return rows
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
