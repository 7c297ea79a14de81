package dictionary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dict-manager/feature/dictionary/models"

	"gorm.io/gorm"
)

// NewEntry holds the fields for creating an entry.
type NewEntry struct {
	GameID      uint    `json:"game_id"`
	CategoryID  uint    `json:"category_id"`
	Reading     string  `json:"reading"`
	Word        string  `json:"word"`
	Description *string `json:"description"`
}

// EntryUpdate holds the optional fields for updating an entry.
type EntryUpdate struct {
	CategoryID  *uint   `json:"category_id"`
	Reading     *string `json:"reading"`
	Word        *string `json:"word"`
	Description *string `json:"description"`
}

// EntryRepository persists entries.
type EntryRepository struct {
	db *gorm.DB
}

// GetAll returns all entries ordered by reading.
func (r *EntryRepository) GetAll(ctx context.Context) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.WithContext(ctx).Order("reading ASC, id ASC").Find(&entries).Error
	return entries, err
}

// GetByID returns the entry or nil when absent.
func (r *EntryRepository) GetByID(ctx context.Context, id uint) (*models.Entry, error) {
	return first[models.Entry](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByGame returns a game's entries ordered by reading.
func (r *EntryRepository) GetByGame(ctx context.Context, gameID uint) ([]models.Entry, error) {
	var entries []models.Entry
	err := r.db.WithContext(ctx).Where("game_id = ?", gameID).Order("reading ASC, id ASC").Find(&entries).Error
	return entries, err
}

// Find returns the entry matching all four keys, or nil.
func (r *EntryRepository) Find(ctx context.Context, gameID, categoryID uint, reading, word string) (*models.Entry, error) {
	return first[models.Entry](r.db.WithContext(ctx).
		Where("game_id = ? AND category_id = ? AND reading = ? AND word = ?", gameID, categoryID, reading, word))
}

// Create inserts an entry.
func (r *EntryRepository) Create(ctx context.Context, in NewEntry) (*models.Entry, error) {
	reading := strings.TrimSpace(in.Reading)
	word := strings.TrimSpace(in.Word)
	if reading == "" || word == "" {
		return nil, fmt.Errorf("%w: reading and word are required", ErrInvalidInput)
	}
	entry := &models.Entry{
		GameID:      in.GameID,
		CategoryID:  in.CategoryID,
		Reading:     reading,
		Word:        word,
		Description: in.Description,
	}
	if err := r.Insert(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Insert stores the entry as given. A non-zero ID and timestamps are kept.
func (r *EntryRepository) Insert(ctx context.Context, entry *models.Entry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: %w", ErrInvalidReference, err)
		}
		return err
	}
	return nil
}

// Update applies the given fields and returns the stored entry, or nil when absent.
func (r *EntryRepository) Update(ctx context.Context, id uint, in EntryUpdate) (*models.Entry, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	values := map[string]any{"updated_at": time.Now()}
	if in.CategoryID != nil {
		values["category_id"] = *in.CategoryID
	}
	if in.Reading != nil {
		if strings.TrimSpace(*in.Reading) == "" {
			return nil, fmt.Errorf("%w: reading is required", ErrInvalidInput)
		}
		values["reading"] = strings.TrimSpace(*in.Reading)
	}
	if in.Word != nil {
		if strings.TrimSpace(*in.Word) == "" {
			return nil, fmt.Errorf("%w: word is required", ErrInvalidInput)
		}
		values["word"] = strings.TrimSpace(*in.Word)
	}
	if in.Description != nil {
		values["description"] = models.StringPtr(*in.Description)
	}

	err = r.db.WithContext(ctx).Model(&models.Entry{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidReference, err)
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an entry and reports whether one was removed.
func (r *EntryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Entry{})
	return res.RowsAffected > 0, res.Error
}

// DeleteByGame removes all entries of a game and returns how many were removed.
func (r *EntryRepository) DeleteByGame(ctx context.Context, gameID uint) (int64, error) {
	res := r.db.WithContext(ctx).Where("game_id = ?", gameID).Delete(&models.Entry{})
	return res.RowsAffected, res.Error
}

// Count returns the number of entries.
func (r *EntryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Entry{}).Count(&n).Error
	return n, err
}

// CountByGame returns the number of entries of a game.
func (r *EntryRepository) CountByGame(ctx context.Context, gameID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Entry{}).Where("game_id = ?", gameID).Count(&n).Error
	return n, err
}

// Search matches text against reading, word and description. A non-nil
// gameID restricts the search to that game.
func (r *EntryRepository) Search(ctx context.Context, text string, gameID *uint) ([]models.EntryWithDetails, error) {
	q := r.detailed(ctx)
	if text = strings.TrimSpace(text); text != "" {
		like := "%" + text + "%"
		q = q.Where("entries.reading LIKE ? OR entries.word LIKE ? OR entries.description LIKE ?", like, like, like)
	}
	if gameID != nil {
		q = q.Where("entries.game_id = ?", *gameID)
	}

	var results []models.EntryWithDetails
	err := q.Order("entries.reading ASC, entries.id ASC").Scan(&results).Error
	return results, err
}

// GetByGameWithDetails returns a game's entries joined with their names.
func (r *EntryRepository) GetByGameWithDetails(ctx context.Context, gameID uint) ([]models.EntryWithDetails, error) {
	var results []models.EntryWithDetails
	err := r.detailed(ctx).
		Where("entries.game_id = ?", gameID).
		Order("entries.reading ASC, entries.id ASC").
		Scan(&results).Error
	return results, err
}

func (r *EntryRepository) detailed(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("entries").
		Select("entries.*, games.name AS game_name, categories.name AS category_name").
		Joins("JOIN games ON games.id = entries.game_id").
		Joins("JOIN categories ON categories.id = entries.category_id")
}
