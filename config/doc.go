// Package config loads service configuration from YAML files and the
// environment using viper and godotenv.
//
// Services embed ServiceConfig in their own config struct and call
// LoadConfig at startup:
//
//	var cfg AppConfig
//	if err := config.LoadConfig("eventhub", &cfg); err != nil { ... }
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil { ... }
package config
