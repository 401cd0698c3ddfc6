package params

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/uhyunpark/swapguard/pkg/app/core/asset"
)

type API struct {
	Addr           string   `env:"ADDR" envDefault:":8080"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000,http://localhost:3001" envSeparator:","`
}

// Journal controls the on-disk decision journal. When disabled, decisions
// are kept in memory only.
type Journal struct {
	Enabled bool   `env:"ENABLED" envDefault:"true"`
	Path    string `env:"PATH" envDefault:"data/journal"`
}

type Slippage struct {
	// LenientLimitFloor lets limit orders fill below their own lower bound.
	LenientLimitFloor bool `env:"LENIENT_LIMIT_FLOOR" envDefault:"false"`
}

type Config struct {
	Network     asset.Network `env:"NETWORK" envDefault:"local"`
	CatalogFile string        `env:"CATALOG_FILE"` // empty: built-in table
	LogFile     string        `env:"LOG_FILE" envDefault:"data/swapguard.log"`
	Verbose     bool          `env:"VERBOSE" envDefault:"false"`

	API      API      `envPrefix:"API_"`
	Journal  Journal  `envPrefix:"JOURNAL_"`
	Slippage Slippage `envPrefix:"SLIPPAGE_"`
}

// Default returns the configuration with every default applied and no
// environment overrides.
func Default() Config {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("invalid config defaults: %v", err))
	}
	return cfg
}

// LoadFromEnv loads configuration from .env file (if exists) and environment variables
// Priority: ENV > .env file > defaults
func LoadFromEnv(envPath string) (Config, error) {
	// Try to load .env file (optional - won't fail if not exists)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	} else {
		_ = godotenv.Load() // loads .env from current directory
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
