package dictionary

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dict-manager/core/utils"
	"dict-manager/feature/dictionary/models"

	"gorm.io/gorm"
)

// NewGame holds the fields for creating a game. An empty Code is derived
// from Name.
type NewGame struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// GameUpdate holds the optional fields for updating a game.
type GameUpdate struct {
	Name *string `json:"name"`
	Code *string `json:"code"`
}

// GameRepository persists games.
type GameRepository struct {
	db *gorm.DB
}

// GetAll returns all games ordered by name.
func (r *GameRepository) GetAll(ctx context.Context) ([]models.Game, error) {
	var games []models.Game
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// GetByID returns the game or nil when absent.
func (r *GameRepository) GetByID(ctx context.Context, id uint) (*models.Game, error) {
	return first[models.Game](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByName returns the game or nil when absent.
func (r *GameRepository) GetByName(ctx context.Context, name string) (*models.Game, error) {
	return first[models.Game](r.db.WithContext(ctx).Where("name = ?", name))
}

// GetByCode returns the game or nil when absent.
func (r *GameRepository) GetByCode(ctx context.Context, code string) (*models.Game, error) {
	return first[models.Game](r.db.WithContext(ctx).Where("code = ?", code))
}

// UniqueCode derives a code from name that no stored game uses.
func (r *GameRepository) UniqueCode(ctx context.Context, name string) (string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).Model(&models.Game{}).Pluck("code", &codes).Error; err != nil {
		return "", err
	}
	taken := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		taken[c] = struct{}{}
	}
	return utils.UniqueCode(name, func(code string) bool {
		_, ok := taken[code]
		return ok
	}), nil
}

// Create inserts a game, deriving a unique code when none is given.
func (r *GameRepository) Create(ctx context.Context, in NewGame) (*models.Game, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: game name is required", ErrInvalidInput)
	}
	if err := utils.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: game %v", ErrInvalidInput, err)
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		var err error
		if code, err = r.UniqueCode(ctx, name); err != nil {
			return nil, err
		}
	} else if err := utils.ValidateCode(code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
	}

	game := &models.Game{Name: name, Code: code}
	if err := r.Insert(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// Insert stores the game as given. A non-zero ID and timestamps are kept.
func (r *GameRepository) Insert(ctx context.Context, game *models.Game) error {
	if err := r.db.WithContext(ctx).Create(game).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: game %q or code %q", ErrDuplicate, game.Name, game.Code)
		}
		return err
	}
	return nil
}

// Update applies the given fields and returns the stored game, or nil when absent.
func (r *GameRepository) Update(ctx context.Context, id uint, in GameUpdate) (*models.Game, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	values := map[string]any{"updated_at": time.Now()}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: game name is required", ErrInvalidInput)
		}
		if err := utils.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%w: game %v", ErrInvalidInput, err)
		}
		values["name"] = name
	}
	if in.Code != nil {
		if err := utils.ValidateCode(*in.Code); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCode, err)
		}
		values["code"] = *in.Code
	}

	err = r.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: game name or code", ErrDuplicate)
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes the game and its entries atomically. It reports whether a
// game was removed.
func (r *GameRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("game_id = ?", id).Delete(&models.Entry{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Game{})
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

// Count returns the number of games.
func (r *GameRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Game{}).Count(&n).Error
	return n, err
}

// Recent returns the most recently created games.
func (r *GameRepository) Recent(ctx context.Context, limit int) ([]models.Game, error) {
	var games []models.Game
	err := r.db.WithContext(ctx).Order("updated_at DESC, id DESC").Limit(limit).Find(&games).Error
	return games, err
}
