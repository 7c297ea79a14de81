package config

import (
	"reflect"
	"strings"

	"dict-manager/core/database"
	"dict-manager/core/logger"
	"dict-manager/core/reconcile"
	"dict-manager/core/server"
	"dict-manager/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server and the runtime mode.
	Server server.Config `mapstructure:"server"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the dictionary store.
	Database database.Config `mapstructure:"database"`
	// Sync holds configuration for the CSV mirror and reconciliation.
	Sync reconcile.Config `mapstructure:"sync"`
	// Storage holds configuration for the optional object storage mirror.
	Storage storage.Config `mapstructure:"storage"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_CSV_DIR -> sync.csv_dir)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.applyModeDefaults()

	return &config, nil
}

// applyModeDefaults fills the locations left empty from the server mode.
func (c *Config) applyModeDefaults() {
	if c.Sync.CSVDir == "" {
		c.Sync.CSVDir = c.Server.DefaultCSVDir()
	}
	if c.Database.Name == "" && strings.EqualFold(c.Database.Driver, database.DriverSQLite) {
		c.Database.Name = c.Server.DefaultDatabasePath()
	}
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
