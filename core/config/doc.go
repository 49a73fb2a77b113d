// Package config provides configuration management for catalog-sync.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file, plus a separate JSON document for the store list.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings,
// divided into subsections:
//   - Server: admin HTTP server settings (port, API key)
//   - Database: MySQL connection for engine-owned tables
//   - Storage: S3/MinIO credentials for the sync-report archive
//   - Log: logging level and format
//   - ERP: source-system service-layer connection
//   - Retry: remote-call retry policy
//   - Sync: run-level scheduling settings
//
// # Stores
//
// The per-store settings (currency rate, price list, Shopify credentials)
// are a list and therefore live in a JSON document (stores.json by default)
// loaded via LoadStores.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	stores, err := config.LoadStores(cfg.Sync.StoresFile)
package config
