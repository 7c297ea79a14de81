package csvsync

import (
	"context"
	"fmt"
	"path/filepath"

	"dict-manager/core/utils"
	"dict-manager/feature/dictionary"
	"dict-manager/feature/dictionary/models"

	"go.uber.org/zap"
)

// ExportIME writes a game's entries for an IME vendor to path: no header,
// comma separated reading, word and the vendor's category label.
func (c *Codec) ExportIME(ctx context.Context, gameID uint, vendor models.Vendor, path string) error {
	rows, err := c.vendorRows(ctx, gameID, vendor)
	if err != nil {
		return err
	}
	if err := c.ensureParent(path); err != nil {
		return err
	}
	if err := c.writeCSV(path, "", ',', rows); err != nil {
		return err
	}
	c.logger.Info("Exported IME dictionary",
		zap.Uint("game_id", gameID),
		zap.String("vendor", string(vendor)),
		zap.String("path", path),
		zap.Int("entries", len(rows)),
	)
	return nil
}

// ExportMicrosoftIME writes {dir}/{code}.txt tab separated and returns its
// path. It fails when the game does not exist or has no entries.
func (c *Codec) ExportMicrosoftIME(ctx context.Context, gameID uint, dir string) (string, error) {
	game, err := c.store.Games.GetByID(ctx, gameID)
	if err != nil {
		return "", err
	}
	if game == nil {
		return "", fmt.Errorf("%w: game %d", dictionary.ErrNotFound, gameID)
	}

	rows, err := c.vendorRows(ctx, gameID, models.VendorMS)
	if err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", fmt.Errorf("%w for game %q: IME export requires at least one entry", ErrNoEntries, game.Name)
	}

	if err := c.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	path := filepath.Join(dir, game.Code+".txt")
	if err := c.writeCSV(path, "", '\t', rows); err != nil {
		return "", err
	}

	c.logger.Info("Exported Microsoft IME dictionary", zap.String("game", game.Name), zap.String("path", path))
	return path, nil
}

// SuggestedPaths are dated default file names for the export targets.
type SuggestedPaths struct {
	GitCSV    string `json:"git_csv"`
	GoogleCSV string `json:"google_csv"`
	MsCSV     string `json:"ms_csv"`
	AtokCSV   string `json:"atok_csv"`
}

// SuggestPaths proposes export paths under baseDir. A nil or unknown game
// yields all-games names.
func (c *Codec) SuggestPaths(ctx context.Context, gameID *uint, baseDir string) (SuggestedPaths, error) {
	stem := "all-games"
	if gameID != nil {
		game, err := c.store.Games.GetByID(ctx, *gameID)
		if err != nil {
			return SuggestedPaths{}, err
		}
		if game != nil {
			stem = utils.Slug(game.Name)
		}
	}

	date := c.now().Format("2006-01-02")
	name := func(vendor string) string {
		if vendor == "" {
			return filepath.Join(baseDir, fmt.Sprintf("%s-%s.csv", stem, date))
		}
		return filepath.Join(baseDir, fmt.Sprintf("%s-%s-%s.csv", stem, vendor, date))
	}

	return SuggestedPaths{
		GitCSV:    name(""),
		GoogleCSV: name(string(models.VendorGoogle)),
		MsCSV:     name(string(models.VendorMS)),
		AtokCSV:   name(string(models.VendorATOK)),
	}, nil
}

func (c *Codec) vendorRows(ctx context.Context, gameID uint, vendor models.Vendor) ([][]string, error) {
	if _, err := models.ParseVendor(string(vendor)); err != nil {
		return nil, err
	}

	entries, err := c.store.Entries.GetByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	categories, err := c.store.Categories.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Category, len(categories))
	for _, cat := range categories {
		byID[cat.ID] = cat
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		label := models.FallbackLabel
		if cat, ok := byID[e.CategoryID]; ok {
			label = cat.VendorName(vendor)
		}
		rows = append(rows, []string{e.Reading, e.Word, label})
	}
	return rows, nil
}

func (c *Codec) ensureParent(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := c.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}
