package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (console, json).
	Format string `mapstructure:"format" default:"console"`
	// File, when set, also writes logs to this path. Colors are not stripped,
	// so pair it with the json format.
	File string `mapstructure:"file" default:""`
}
