// Package config provides configuration management for the dictionary manager.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file (via godotenv).
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key and the runtime mode (production, test)
//   - Database: sqlite path or mysql connection details
//   - Sync: CSV directory, vendor export directory, auto import/export switches
//   - Storage: optional S3/MinIO mirror of exported CSV files
//   - Log: Logging level and format
//
// Paths left empty are derived from Server.Mode, so test runs never touch the
// production CSV directory or database.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.CSVDir)
package config
