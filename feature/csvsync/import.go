package csvsync

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"dict-manager/core/reconcile"
	"dict-manager/core/utils"
	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

var (
	gameCommentPattern   = regexp.MustCompile(`^#\s*Game:\s*(.+) \(Code: ([A-Za-z0-9]+)\)\s*$`)
	legacyCommentPattern = regexp.MustCompile(`^#\s*Game:\s*(.+) \(ID: \d+\)\s*$`)
)

// ImportSummary counts what an import changed.
type ImportSummary struct {
	Files             int `json:"files"`
	GamesCreated      int `json:"games_created"`
	CategoriesCreated int `json:"categories_created"`
	EntriesCreated    int `json:"entries_created"`
	EntriesSkipped    int `json:"entries_skipped"`
}

func (s *ImportSummary) add(o ImportSummary) {
	s.Files += o.Files
	s.GamesCreated += o.GamesCreated
	s.CategoriesCreated += o.CategoriesCreated
	s.EntriesCreated += o.EntriesCreated
	s.EntriesSkipped += o.EntriesSkipped
}

// Import merges the games manifest, the categories manifest and every
// per-game file of dir into the store, in that order. Existing rows are
// never modified.
func (c *Codec) Import(ctx context.Context, dir string) (*ImportSummary, error) {
	exists, err := afero.DirExists(c.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
	}

	infos, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dir, err)
	}

	files := make(map[string]bool, len(infos))
	var gameFiles []string
	for _, info := range infos {
		if info.IsDir() {
			continue
		}
		files[info.Name()] = true
		if reconcile.IsGameFile(info.Name()) {
			gameFiles = append(gameFiles, filepath.Join(dir, info.Name()))
		}
	}

	summary := &ImportSummary{}

	if files[reconcile.GamesFile] {
		n, err := c.importGames(ctx, filepath.Join(dir, reconcile.GamesFile))
		if err != nil {
			return summary, err
		}
		summary.Files++
		summary.GamesCreated += n
	}

	if files[reconcile.CategoriesFile] {
		n, err := c.importCategories(ctx, filepath.Join(dir, reconcile.CategoriesFile))
		if err != nil {
			return summary, err
		}
		summary.Files++
		summary.CategoriesCreated += n
	}

	for _, path := range gameFiles {
		s, err := c.ImportFile(ctx, path)
		if err != nil {
			return summary, err
		}
		summary.add(*s)
	}

	c.logger.Info("Imported CSV directory",
		zap.String("dir", dir),
		zap.Int("files", summary.Files),
		zap.Int("games_created", summary.GamesCreated),
		zap.Int("entries_created", summary.EntriesCreated),
		zap.Int("entries_skipped", summary.EntriesSkipped),
	)
	return summary, nil
}

// ImportFile merges one per-game file. The game is found by name, or
// created; entries already present under the same game, category, reading
// and word are skipped.
func (c *Codec) ImportFile(ctx context.Context, path string) (*ImportSummary, error) {
	content, err := c.readFile(path)
	if err != nil {
		return nil, err
	}

	name, code := parseGameComment(content)
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	records, err := parseRecords(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	for _, col := range []string{"category_name", "reading", "word"} {
		if len(records) > 0 {
			if _, ok := records[0][col]; !ok {
				return nil, fmt.Errorf("%w: %s has no %s column", ErrInvalidFile, path, col)
			}
		}
	}

	summary := &ImportSummary{Files: 1}
	err = c.store.Transaction(ctx, func(tx *dictionary.Store) error {
		game, created, err := resolveGame(ctx, tx, name, code)
		if err != nil {
			return err
		}
		if created {
			summary.GamesCreated++
		}

		categories := make(map[string]*models.Category)
		for _, r := range records {
			reading, word := strings.TrimSpace(r["reading"]), strings.TrimSpace(r["word"])
			if reading == "" || word == "" || strings.TrimSpace(r["category_name"]) == "" {
				c.logger.Warn("Skipping incomplete row", zap.String("file", path), zap.String("word", word))
				summary.EntriesSkipped++
				continue
			}

			category, ok := categories[r["category_name"]]
			if !ok {
				var created bool
				if category, created, err = resolveCategory(ctx, tx, r["category_name"]); err != nil {
					return err
				}
				if created {
					summary.CategoriesCreated++
				}
				categories[r["category_name"]] = category
			}

			existing, err := tx.Entries.Find(ctx, game.ID, category.ID, reading, word)
			if err != nil {
				return err
			}
			if existing != nil {
				summary.EntriesSkipped++
				continue
			}

			entry := &models.Entry{
				GameID:      game.ID,
				CategoryID:  category.ID,
				Reading:     reading,
				Word:        word,
				Description: models.StringPtr(r["description"]),
			}
			if err := tx.Entries.Insert(ctx, entry); err != nil {
				return err
			}
			summary.EntriesCreated++
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to import %s: %w", path, err)
	}

	c.logger.Debug("Imported game file",
		zap.String("file", path),
		zap.String("game", name),
		zap.Int("created", summary.EntriesCreated),
		zap.Int("skipped", summary.EntriesSkipped),
	)
	return summary, nil
}

// resolveGame finds a game by name or creates it. A code recovered from the
// file comment is kept when it is valid and free.
func resolveGame(ctx context.Context, tx *dictionary.Store, name, code string) (*models.Game, bool, error) {
	game, err := tx.Games.GetByName(ctx, name)
	if err != nil || game != nil {
		return game, false, err
	}

	if code != "" {
		taken, err := tx.Games.GetByCode(ctx, code)
		if err != nil {
			return nil, false, err
		}
		if taken != nil || utils.ValidateCode(code) != nil {
			code = ""
		}
	}

	game, err = tx.Games.Create(ctx, dictionary.NewGame{Name: name, Code: code})
	if err != nil {
		return nil, false, err
	}
	return game, true, nil
}

// resolveCategory finds a category by name or creates it with fallback labels.
func resolveCategory(ctx context.Context, tx *dictionary.Store, name string) (*models.Category, bool, error) {
	category, err := tx.Categories.GetByName(ctx, name)
	if err != nil || category != nil {
		return category, false, err
	}

	fallback := models.FallbackLabel
	category, err = tx.Categories.Create(ctx, dictionary.NewCategory{
		Name:          name,
		GoogleImeName: &fallback,
		MsImeName:     &fallback,
		AtokName:      &fallback,
	})
	if err != nil {
		return nil, false, err
	}
	return category, true, nil
}

// importGames creates manifest games whose id and name are both unused,
// keeping the id from the file.
func (c *Codec) importGames(ctx context.Context, path string) (int, error) {
	content, err := c.readFile(path)
	if err != nil {
		return 0, err
	}
	records, err := parseRecords(content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	created := 0
	err = c.store.Transaction(ctx, func(tx *dictionary.Store) error {
		for _, r := range records {
			id, err := strconv.ParseUint(strings.TrimSpace(r["id"]), 10, 64)
			if err != nil || strings.TrimSpace(r["name"]) == "" || utils.ValidateName(r["name"]) != nil {
				c.logger.Warn("Skipping malformed game row", zap.String("file", path), zap.String("id", r["id"]))
				continue
			}

			if existing, err := tx.Games.GetByID(ctx, uint(id)); err != nil || existing != nil {
				if err != nil {
					return err
				}
				continue
			}
			if existing, err := tx.Games.GetByName(ctx, r["name"]); err != nil || existing != nil {
				if err != nil {
					return err
				}
				continue
			}

			code := strings.TrimSpace(r["code"])
			if code != "" && utils.ValidateCode(code) == nil {
				taken, err := tx.Games.GetByCode(ctx, code)
				if err != nil {
					return err
				}
				if taken != nil {
					code = ""
				}
			} else {
				code = ""
			}
			if code == "" {
				if code, err = tx.Games.UniqueCode(ctx, r["name"]); err != nil {
					return err
				}
			}

			now := c.now()
			game := &models.Game{
				ID:        uint(id),
				Name:      r["name"],
				Code:      code,
				CreatedAt: parseTime(r["created_at"], now),
				UpdatedAt: parseTime(r["updated_at"], now),
			}
			if err := tx.Games.Insert(ctx, game); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return created, nil
}

// importCategories creates manifest categories whose id and name are both
// unused, keeping the id from the file.
func (c *Codec) importCategories(ctx context.Context, path string) (int, error) {
	content, err := c.readFile(path)
	if err != nil {
		return 0, err
	}
	records, err := parseRecords(content)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	created := 0
	err = c.store.Transaction(ctx, func(tx *dictionary.Store) error {
		for _, r := range records {
			id, err := strconv.ParseUint(strings.TrimSpace(r["id"]), 10, 64)
			if err != nil || strings.TrimSpace(r["name"]) == "" || utils.ValidateName(r["name"]) != nil {
				c.logger.Warn("Skipping malformed category row", zap.String("file", path), zap.String("id", r["id"]))
				continue
			}

			if existing, err := tx.Categories.GetByID(ctx, uint(id)); err != nil || existing != nil {
				if err != nil {
					return err
				}
				continue
			}
			if existing, err := tx.Categories.GetByName(ctx, r["name"]); err != nil || existing != nil {
				if err != nil {
					return err
				}
				continue
			}

			category := &models.Category{
				ID:            uint(id),
				Name:          r["name"],
				GoogleImeName: models.StringPtr(r["google_ime_name"]),
				MsImeName:     models.StringPtr(r["ms_ime_name"]),
				AtokName:      models.StringPtr(r["atok_name"]),
			}
			if err := tx.Categories.Insert(ctx, category); err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import %s: %w", path, err)
	}
	return created, nil
}

func (c *Codec) readFile(path string) (string, error) {
	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return strings.TrimPrefix(string(data), "\ufeff"), nil
}

// parseGameComment recovers the game name, and code when present, from the
// first line of a per-game file.
func parseGameComment(content string) (name, code string) {
	line, _, _ := strings.Cut(content, "\n")
	line = strings.TrimRight(line, "\r")
	if !strings.HasPrefix(line, "#") {
		return "", ""
	}
	if m := gameCommentPattern.FindStringSubmatch(line); m != nil {
		return m[1], m[2]
	}
	if m := legacyCommentPattern.FindStringSubmatch(line); m != nil {
		return m[1], ""
	}
	return "", ""
}

// parseRecords reads a headed CSV and keys each row by column name. Only a
// leading comment line is dropped, so data rows may start with '#'.
func parseRecords(content string) ([]map[string]string, error) {
	r := csv.NewReader(strings.NewReader(stripComment(content)))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []map[string]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := make(map[string]string, len(header))
		for i, col := range header {
			rec[col] = ""
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// stripComment removes the first line when it is a comment.
func stripComment(content string) string {
	if !strings.HasPrefix(content, "#") {
		return content
	}
	_, rest, _ := strings.Cut(content, "\n")
	return rest
}

func parseTime(s string, fallback time.Time) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", "2006-01-02T15:04:05.000Z"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return fallback
}
