package reconcile

import "strings"

// File names of the CSV directory layout.
const (
	GamesFile      = "games.csv"
	CategoriesFile = "categories.csv"
	GameFilePrefix = "game-"
	CSVExtension   = ".csv"
)

// EntryHeader is the header row of a per-game file.
const EntryHeader = "category_name,reading,word,description"

// GameFileName returns the per-game file name for a game code.
func GameFileName(code string) string {
	return GameFilePrefix + code + CSVExtension
}

// IsGameFile reports whether name follows the per-game file pattern.
func IsGameFile(name string) bool {
	return strings.HasPrefix(name, GameFilePrefix) && strings.HasSuffix(name, CSVExtension)
}
