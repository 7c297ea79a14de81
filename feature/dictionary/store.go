package dictionary

import (
	"context"
	"fmt"

	"dict-manager/core/database"

	"gorm.io/gorm"
)

// Store is the persistent dictionary: games, categories and entries.
type Store struct {
	db         *gorm.DB
	Games      *GameRepository
	Categories *CategoryRepository
	Entries    *EntryRepository
}

// NewStore wraps an open connection. Call Init before first use.
func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Games:      &GameRepository{db: db},
		Categories: &CategoryRepository{db: db},
		Entries:    &EntryRepository{db: db},
	}
}

// Init migrates the schema and seeds the default categories.
func (s *Store) Init(ctx context.Context) error {
	if err := database.Migrate(s.db.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	if err := s.Categories.SeedDefaults(ctx); err != nil {
		return fmt.Errorf("failed to seed categories: %w", err)
	}
	return nil
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// CountGames returns the number of games.
func (s *Store) CountGames(ctx context.Context) (int64, error) {
	return s.Games.Count(ctx)
}

// CountEntries returns the number of entries across all games.
func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	return s.Entries.Count(ctx)
}

// Transaction runs fn against a Store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}

// first runs a lookup and maps a missing row to (nil, nil).
func first[T any](q *gorm.DB) (*T, error) {
	var out T
	res := q.Limit(1).Find(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &out, nil
}
