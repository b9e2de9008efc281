/*
 * ImKitchen - Self-Hosted Meal Planning Application
 * Copyright (C) 2025 RGH Software
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published
 * by the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Auth          AuthConfig
	Reasoning     ReasoningConfig
	Notifications NotificationsConfig
	Logging       LoggingConfig
}

// ServerConfig contains server-related configuration.
type ServerConfig struct {
	Host         string
	Port         int
	Environment  string
	TrustedProxy []string
}

// DatabaseConfig contains event-store/read-model database configuration.
type DatabaseConfig struct {
	Type         string // postgres, sqlite
	Host         string
	Port         int
	Name         string
	User         string
	Password     string
	SSLMode      string
	MaxConns     int
	MinConns     int
	SQLitePath   string
	CustomConfig map[string]string
}

// AuthConfig contains password hashing and session token configuration.
type AuthConfig struct {
	JWTSecret     string
	JWTExpiry     int // minutes
	Argon2Memory  uint32
	Argon2Time    uint32
	Argon2Threads uint8
}

// ReasoningConfig selects the optional LLM-backed assignment-reasoning
// enrichment; a deterministic template is always available as fallback
// (assignment_reasoning never requires an LLM call to be produced).
type ReasoningConfig struct {
	DefaultProvider string // template, openai, gemini
	OpenAI          OpenAIConfig
	Gemini          GeminiConfig
}

// OpenAIConfig for the OpenAI reasoning provider.
type OpenAIConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

// GeminiConfig for the Google Gemini reasoning provider.
type GeminiConfig struct {
	Enabled bool
	APIKey  string
	Model   string
}

// NotificationsConfig tunes the periodic tickers and delivery worker
//.
type NotificationsConfig struct {
	MorningTickerCron   string
	DayOfTickerInterval int // minutes
	CarryOverMaxCount   int
	DeliveryPollSeconds int
	AdminEmail          string // contact-form notification recipient; empty disables
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string // json, console
}

// Load reads configuration from environment variables and config file.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/imkitchen")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.SetEnvPrefix("IMKITCHEN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")

	viper.SetDefault("database.type", "sqlite")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "imkitchen")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.maxconns", 25)
	viper.SetDefault("database.minconns", 5)
	viper.SetDefault("database.sqlitepath", "./data/imkitchen.db")

	viper.SetDefault("auth.jwtexpiry", 1440)
	viper.SetDefault("auth.argon2memory", 65536)
	viper.SetDefault("auth.argon2time", 3)
	viper.SetDefault("auth.argon2threads", 4)

	viper.SetDefault("reasoning.defaultprovider", "template")
	viper.SetDefault("reasoning.openai.enabled", false)
	viper.SetDefault("reasoning.openai.model", "gpt-3.5-turbo")
	viper.SetDefault("reasoning.gemini.enabled", false)
	viper.SetDefault("reasoning.gemini.model", "gemini-pro")

	viper.SetDefault("notifications.morningtickercron", "0 9 * * *")
	viper.SetDefault("notifications.dayoftickerinterval", 15)
	viper.SetDefault("notifications.carryovermaxcount", 3)
	viper.SetDefault("notifications.deliverypollseconds", 60)
	viper.SetDefault("notifications.adminemail", "")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
}
