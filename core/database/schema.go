package database

import (
	"fmt"

	"dict-manager/core/utils"

	"gorm.io/gorm"
)

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS games (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL UNIQUE,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS categories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		google_ime_name TEXT,
		ms_ime_name TEXT,
		atok_name TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		game_id INTEGER NOT NULL,
		category_id INTEGER NOT NULL,
		reading TEXT NOT NULL,
		word TEXT NOT NULL,
		description TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (game_id) REFERENCES games(id) ON DELETE CASCADE,
		FOREIGN KEY (category_id) REFERENCES categories(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_game_id ON entries(game_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_category_id ON entries(category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_entries_reading ON entries(reading)`,
}

var mysqlSchema = []string{
	"CREATE TABLE IF NOT EXISTS `games` (" +
		"`id` BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY," +
		"`name` VARCHAR(191) NOT NULL UNIQUE," +
		"`code` VARCHAR(16) NOT NULL UNIQUE," +
		"`created_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)," +
		"`updated_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)" +
		") DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS `categories` (" +
		"`id` BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY," +
		"`name` VARCHAR(191) NOT NULL UNIQUE," +
		"`google_ime_name` VARCHAR(191) NULL," +
		"`ms_ime_name` VARCHAR(191) NULL," +
		"`atok_name` VARCHAR(191) NULL," +
		"`created_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)," +
		"`updated_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)" +
		") DEFAULT CHARSET=utf8mb4",
	"CREATE TABLE IF NOT EXISTS `entries` (" +
		"`id` BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY," +
		"`game_id` BIGINT UNSIGNED NOT NULL," +
		"`category_id` BIGINT UNSIGNED NOT NULL," +
		"`reading` VARCHAR(191) NOT NULL," +
		"`word` VARCHAR(191) NOT NULL," +
		"`description` TEXT NULL," +
		"`created_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)," +
		"`updated_at` DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3)," +
		"INDEX `idx_entries_game_id` (`game_id`)," +
		"INDEX `idx_entries_category_id` (`category_id`)," +
		"INDEX `idx_entries_reading` (`reading`)," +
		"FOREIGN KEY (`game_id`) REFERENCES `games`(`id`) ON DELETE CASCADE," +
		"FOREIGN KEY (`category_id`) REFERENCES `categories`(`id`) ON DELETE RESTRICT" +
		") DEFAULT CHARSET=utf8mb4",
}

// Migrate creates the dictionary tables for the active dialect and upgrades
// databases written before games carried a code.
func Migrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	var stmts []string
	switch db.Dialector.Name() {
	case DriverSQLite:
		// The legacy table has to be upgraded before CREATE TABLE IF NOT EXISTS
		// skips it.
		if err := migrateLegacyGames(db); err != nil {
			return err
		}
		stmts = sqliteSchema
	case DriverMySQL:
		if err := migrateLegacyGames(db); err != nil {
			return err
		}
		stmts = mysqlSchema
	default:
		return fmt.Errorf("unsupported dialect: %s", db.Dialector.Name())
	}

	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

// migrateLegacyGames adds games.code to a games table created without it,
// deriving a unique code for every existing row.
func migrateLegacyGames(db *gorm.DB) error {
	if !db.Migrator().HasTable("games") {
		// Fresh database
		return nil
	}
	columns, err := GetTableColumns(db, "games")
	if err != nil {
		return err
	}
	for _, col := range columns {
		if col.Field == "code" {
			return nil
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("ALTER TABLE games ADD COLUMN code VARCHAR(16)").Error; err != nil {
			return fmt.Errorf("failed to add games.code: %w", err)
		}

		type legacyGame struct {
			ID   uint
			Name string
		}
		var games []legacyGame
		if err := tx.Raw("SELECT id, name FROM games ORDER BY id").Scan(&games).Error; err != nil {
			return fmt.Errorf("failed to read legacy games: %w", err)
		}

		used := make(map[string]bool, len(games))
		for _, g := range games {
			code := utils.UniqueCode(g.Name, func(c string) bool { return used[c] })
			used[code] = true
			if err := tx.Exec("UPDATE games SET code = ? WHERE id = ?", code, g.ID).Error; err != nil {
				return fmt.Errorf("failed to set code for game %d: %w", g.ID, err)
			}
		}

		if err := tx.Exec("CREATE UNIQUE INDEX idx_games_code ON games(code)").Error; err != nil {
			return fmt.Errorf("failed to index games.code: %w", err)
		}
		return nil
	})
}
