package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config aggregates all application configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Amadeus       AmadeusConfig       `yaml:"amadeus"`
	Travelpayouts TravelpayoutsConfig `yaml:"travelpayouts"`
	Affiliate     AffiliateConfig     `yaml:"affiliate"`
	Database      DatabaseConfig      `yaml:"database"`
	Search        SearchConfig        `yaml:"search"`
}

type ServerConfig struct {
	Port  string `yaml:"port" env:"PORT" env-default:"8000"`
	Debug bool   `yaml:"debug" env:"DEBUG_MODE" env-default:"false"`
}

type AmadeusConfig struct {
	ClientID     string `yaml:"client_id" env:"AMADEUS_CLIENT_ID"`
	ClientSecret string `yaml:"client_secret" env:"AMADEUS_CLIENT_SECRET"`
	BaseURL      string `yaml:"base_url" env:"AMADEUS_BASE_URL" env-default:"https://test.api.amadeus.com"`
	TimeoutSecs  int    `yaml:"timeout_secs" env:"AMADEUS_TIMEOUT_SECS" env-default:"10"`
}

type TravelpayoutsConfig struct {
	Token       string `yaml:"token" env:"TRAVELPAYOUTS_API_TOKEN"`
	BaseURL     string `yaml:"base_url" env:"TRAVELPAYOUTS_BASE_URL" env-default:"https://api.travelpayouts.com"`
	UserIP      string `yaml:"user_ip" env:"USER_IP" env-default:"127.0.0.1"`
	Locale      string `yaml:"locale" env:"TRAVELPAYOUTS_LOCALE" env-default:"en"`
	TimeoutSecs int    `yaml:"timeout_secs" env:"TRAVELPAYOUTS_TIMEOUT_SECS" env-default:"10"`
}

// AffiliateConfig identifies the partner account used for deep links.
// Host is the affiliate search site links point at, not this server.
type AffiliateConfig struct {
	Marker string `yaml:"marker" env:"AFFILIATE_MARKER"`
	Host   string `yaml:"host" env:"HOST" env-default:"www.aviasales.com"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL" env-default:"flightfinder.db"`
}

type SearchConfig struct {
	FeaturedFlightLimit int    `yaml:"featured_flight_limit" env:"FEATURED_FLIGHT_LIMIT" env-default:"4"`
	Currency            string `yaml:"currency" env:"SEARCH_CURRENCY" env-default:"EUR"`
	CacheTTLSecs        int    `yaml:"cache_ttl_secs" env:"SEARCH_CACHE_TTL_SECS" env-default:"300"`
}

// Load reads configuration from config.yaml and environment variables
// Priority: Env Vars > Config File > Defaults
func Load() (*Config, error) {
	var cfg Config

	// Read config.yaml when present, then let env vars override.
	err := cleanenv.ReadConfig("config.yaml", &cfg)
	if err != nil {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read env config: %w", err)
		}
	}

	return &cfg, nil
}
