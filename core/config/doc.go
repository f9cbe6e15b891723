// Package config provides configuration management for the cooperative
// inventory counter.
//
// It utilizes Viper for loading configuration from environment variables and
// a local .env file.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Device: local device identity and preferred sync transport
//   - Database: local event store connection details (sqlite or mysql)
//   - Storage: S3/MinIO credentials for the totals export collaborator
//   - Log: logging level and format
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
