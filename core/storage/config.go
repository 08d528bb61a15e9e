package storage

// Config holds configuration for the storage provider.
type Config struct {
	// Enabled turns object storage on; workbooks are then read from and written to the bucket.
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Endpoint is the URL of the storage service.
	Endpoint string `mapstructure:"endpoint" default:"localhost:9000"`
	// AccessKey is the access key ID for authentication.
	AccessKey string `mapstructure:"access_key" default:"minioadmin"`
	// SecretKey is the secret access key for authentication.
	SecretKey string `mapstructure:"secret_key" default:"minioadmin"`
	// UseSSL indicates whether to use SSL/TLS for connections.
	UseSSL bool `mapstructure:"use_ssl" default:"false"`
	// Bucket is the name of the bucket holding import and export workbooks.
	Bucket string `mapstructure:"bucket" default:"refdata"`
	// Region is the location of the bucket (e.g., us-east-1).
	Region string `mapstructure:"region" default:""`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
	// ImportPrefix is where workbooks awaiting import are listed from.
	ImportPrefix string `mapstructure:"import_prefix" default:"imports/"`
	// ExportPrefix is where rendered exports are written.
	ExportPrefix string `mapstructure:"export_prefix" default:"exports/"`
	// MaxObjectMB caps the size of workbooks read from the bucket.
	MaxObjectMB int `mapstructure:"max_object_mb" default:"16" validate:"min=0"`
}

// MaxObjectBytes returns the read limit in bytes. Zero means unlimited.
func (c Config) MaxObjectBytes() int64 {
	return int64(c.MaxObjectMB) << 20
}
