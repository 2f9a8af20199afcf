package config

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		Path string
	}
	Server struct {
		Port int
	}
	Auth struct {
		JWTSecret string
	}
	Notify struct {
		Slack struct {
			Token   string
			Channel string
		}
		Email struct {
			SMTPHost    string
			SMTPPort    int
			From        string
			Password    string
			ToReceivers []string
		}
	}
}

// LoadConfig loads the configuration from config.yaml
func LoadConfig() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.SetDefault("database.path", "data/ticketeye.db")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("auth.jwtsecret", "")

	var config Config

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found, write one with the defaults
			if err := os.MkdirAll("data", 0755); err != nil {
				log.Warn().Err(err).Msg("failed to create data directory")
			}
			if err := viper.SafeWriteConfig(); err != nil {
				log.Warn().Err(err).Msg("failed to write default config")
			}
		} else {
			log.Error().Err(err).Msg("error reading config file")
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		log.Error().Err(err).Msg("error unmarshaling config")
	}

	return &config
}
