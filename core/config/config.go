package config

import (
	"reflect"
	"strings"

	"catalog-sync/core/database"
	"catalog-sync/core/erp"
	"catalog-sync/core/logger"
	"catalog-sync/core/retry"
	"catalog-sync/core/server"
	"catalog-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the admin HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the sync-report archive (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the database connection.
	Database database.Config `mapstructure:"database"`
	// ERP holds configuration for the source-system service layer.
	ERP erp.Config `mapstructure:"erp"`
	// Retry holds the remote-call retry policy.
	Retry retry.Config `mapstructure:"retry"`
	// Sync holds the run-level scheduling settings.
	Sync Sync `mapstructure:"sync"`
}

// Sync holds run-level settings shared by every sync type.
type Sync struct {
	// GroupDelayMS is the fixed pause between product groups, a scheduling
	// courtesy toward storefront rate limits.
	GroupDelayMS int `mapstructure:"group_delay_ms" default:"500"`
	// StoresFile is the path of the store list document.
	StoresFile string `mapstructure:"stores_file" default:"stores.json"`
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	// 1. Load .env file if it exists
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SERVER_PORT -> server.port)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	// If it's a pointer, get the element
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")

		// Skip if no tag
		if tag == "" {
			continue
		}

		// Build the key
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		// If it's a nested struct, recurse
		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		defaultValue := field.Tag.Get("default")
		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, defaultValue)
	}
}
