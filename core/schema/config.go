package schema

// Config holds configuration for resource schema loading.
type Config struct {
	// File is an optional JSON file with additional resource types and schemas.
	File string `mapstructure:"file" default:""`
}
