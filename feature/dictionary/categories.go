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

// defaultCategories are seeded into an empty store.
var defaultCategories = []struct {
	name, google, ms, atok string
}{
	{"名詞", "一般", "一般", "一般"},
	{"品詞なし", "一般", "一般", "一般"},
	{"人名", "人名", "人名", "人名"},
}

// NewCategory holds the fields for creating a category.
type NewCategory struct {
	Name          string  `json:"name"`
	GoogleImeName *string `json:"google_ime_name"`
	MsImeName     *string `json:"ms_ime_name"`
	AtokName      *string `json:"atok_name"`
}

// CategoryUpdate holds the optional fields for updating a category.
type CategoryUpdate struct {
	Name          *string `json:"name"`
	GoogleImeName *string `json:"google_ime_name"`
	MsImeName     *string `json:"ms_ime_name"`
	AtokName      *string `json:"atok_name"`
}

// CategoryRepository persists categories.
type CategoryRepository struct {
	db *gorm.DB
}

// GetAll returns all categories in insertion order.
func (r *CategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// GetByID returns the category or nil when absent.
func (r *CategoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	return first[models.Category](r.db.WithContext(ctx).Where("id = ?", id))
}

// GetByName returns the category or nil when absent.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return first[models.Category](r.db.WithContext(ctx).Where("name = ?", name))
}

// Create inserts a category.
func (r *CategoryRepository) Create(ctx context.Context, in NewCategory) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	if err := utils.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: category %v", ErrInvalidInput, err)
	}
	category := &models.Category{
		Name:          name,
		GoogleImeName: in.GoogleImeName,
		MsImeName:     in.MsImeName,
		AtokName:      in.AtokName,
	}
	if err := r.Insert(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Insert stores the category as given. A non-zero ID and timestamps are kept.
func (r *CategoryRepository) Insert(ctx context.Context, category *models.Category) error {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: category %q", ErrDuplicate, category.Name)
		}
		return err
	}
	return nil
}

// Update applies the given fields and returns the stored category, or nil when absent.
func (r *CategoryRepository) Update(ctx context.Context, id uint, in CategoryUpdate) (*models.Category, error) {
	existing, err := r.GetByID(ctx, id)
	if err != nil || existing == nil {
		return nil, err
	}

	values := map[string]any{"updated_at": time.Now()}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: category name is required", ErrInvalidInput)
		}
		if err := utils.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%w: category %v", ErrInvalidInput, err)
		}
		values["name"] = name
	}
	if in.GoogleImeName != nil {
		values["google_ime_name"] = models.StringPtr(*in.GoogleImeName)
	}
	if in.MsImeName != nil {
		values["ms_ime_name"] = models.StringPtr(*in.MsImeName)
	}
	if in.AtokName != nil {
		values["atok_name"] = models.StringPtr(*in.AtokName)
	}

	err = r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: category name", ErrDuplicate)
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an unused category. It reports whether a category was
// removed and returns ErrCategoryInUse while entries reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id uint) (bool, error) {
	var inUse int64
	if err := r.db.WithContext(ctx).Model(&models.Entry{}).Where("category_id = ?", id).Count(&inUse).Error; err != nil {
		return false, err
	}
	if inUse > 0 {
		return false, fmt.Errorf("%w: %d entries reference it", ErrCategoryInUse, inUse)
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Category{})
	if res.Error != nil {
		if isForeignKeyViolation(res.Error) {
			return false, fmt.Errorf("%w: %v", ErrCategoryInUse, res.Error)
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Count returns the number of categories.
func (r *CategoryRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Category{}).Count(&n).Error
	return n, err
}

// SeedDefaults inserts the default categories when none exist.
func (r *CategoryRepository) SeedDefaults(ctx context.Context) error {
	n, err := r.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, d := range defaultCategories {
			c := models.Category{
				Name:          d.name,
				GoogleImeName: models.StringPtr(d.google),
				MsImeName:     models.StringPtr(d.ms),
				AtokName:      models.StringPtr(d.atok),
			}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
