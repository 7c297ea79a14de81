// Package csvsync serializes the dictionary to a git-friendly CSV directory
// and back, and writes vendor dictionaries for Google IME, MS-IME and ATOK.
//
// Directory layout:
//
//	games.csv        id,name,code,created_at,updated_at
//	categories.csv   id,name,google_ime_name,ms_ime_name,atok_name
//	game-{code}.csv  "# Game: {name} (Code: {code})", then
//	                 category_name,reading,word,description
//
// Imports only add rows. Each file is imported in its own transaction; a
// failure part way through a directory leaves earlier files imported.
package csvsync
