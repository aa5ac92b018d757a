package config

import (
	"errors"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port               int      `mapstructure:"port"`
		CorsAllowedOrigins []string `mapstructure:"cors_allowed_origins"`
		CorsAllowedMethods []string `mapstructure:"cors_allowed_methods"`
		CorsAllowedHeaders []string `mapstructure:"cors_allowed_headers"`
	} `mapstructure:"server"`

	Session struct {
		TTLMinutes int `mapstructure:"ttl_minutes"`
	} `mapstructure:"session"`

	Renderer struct {
		WkhtmltopdfPath string `mapstructure:"wkhtmltopdf_path"`
	} `mapstructure:"renderer"`

	Monitoring struct {
		Port int `mapstructure:"port"`
	} `mapstructure:"monitoring"`
}

func Load() *Config {
	// Load .env file if exists (ignore error in production)
	godotenv.Load()

	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigFile("configs/config.yaml")

	// Auto bind environment variables
	v.AutomaticEnv()

	// Set sensible defaults (binary works without config file)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_allowed_origins", []string{"*"})
	v.SetDefault("server.cors_allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("server.cors_allowed_headers", []string{"Content-Type"})
	v.SetDefault("session.ttl_minutes", 120)
	v.SetDefault("monitoring.port", 9090)

	// Config file is optional, but a file that exists and fails to parse is
	// a real error, not a missing file.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			log.Printf("[Config] No config file found, using defaults")
		} else {
			log.Fatalf("[Config] Failed to read config file: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Fatalf("config unmarshal error: %v", err)
	}

	// Environment overrides
	if port := os.Getenv("PORT"); port != "" {
		if n, err := strconv.Atoi(port); err == nil && n > 0 {
			cfg.Server.Port = n
		}
	}
	if path := os.Getenv("WKHTMLTOPDF_PATH"); path != "" {
		cfg.Renderer.WkhtmltopdfPath = path
	}

	return &cfg
}
