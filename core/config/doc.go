// Package config provides configuration management for the reference data service.
//
// It utilizes Viper for loading configuration from environment variables, an
// optional .env file and an optional refdata.yaml (or .json/.toml) file, with
// defaults declared as struct tags on each section.
// The loaded configuration is validated with go-playground/validator.
//
// # Configuration Structure
//
//   - Server: HTTP port, API key, upload limit
//   - Database: driver (mysql, postgres, sqlite) and connection details
//   - Storage: S3/MinIO credentials, bucket and workbook prefixes
//   - Log: level, format and optional rotated file
//   - Schema: optional JSON file with additional resource schemas
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
