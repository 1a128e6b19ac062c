package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all process configuration. It is loaded once at startup
// and passed to the components that need it; nothing reads settings
// ambiently after that.
type Config struct {
	ServerAddress string `mapstructure:"SERVER_ADDRESS"`
	DBPath        string `mapstructure:"DB_PATH"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`

	OpenRouteAPIKey string `mapstructure:"OPENROUTE_API_KEY"`

	SMTPHost     string `mapstructure:"SMTP_HOST"`
	SMTPPort     string `mapstructure:"SMTP_PORT"`
	SMTPUsername string `mapstructure:"SMTP_USERNAME"`
	SMTPPassword string `mapstructure:"SMTP_PASSWORD"`
	SMTPFrom     string `mapstructure:"SMTP_FROM"`
}

// Load reads configuration from app.env in the given directory, falling
// back to environment variables. A missing config file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_ADDRESS", ":8080")
	v.SetDefault("DB_PATH", "farmerchain.sqlite3")
	v.SetDefault("SMTP_PORT", "587")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}
	return cfg, nil
}
