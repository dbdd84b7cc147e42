package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/recetapp/recetapp/internal/client/discover"
)

// Config is the client configuration. Precedence, lowest first: defaults,
// YAML file, environment, command-line flags.
type Config struct {
	ServerURL          string `yaml:"server_url" env:"RECETAPP_SERVER_URL"`
	DBPath             string `yaml:"db_path" env:"RECETAPP_DB"`
	SpoonacularAPIKey  string `yaml:"spoonacular_api_key" env:"SPOONACULAR_API_KEY"`
	SpoonacularBaseURL string `yaml:"spoonacular_base_url" env:"SPOONACULAR_BASE_URL"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		ServerURL:          "http://localhost:8080",
		DBPath:             defaultDataPath("recetapp.db"),
		SpoonacularBaseURL: discover.DefaultBaseURL,
	}
}

// DefaultConfigPath is where LoadConfig looks when no file is given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "recetapp", "config.yaml")
}

func defaultDataPath(name string) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return name
	}
	return filepath.Join(dir, "recetapp", name)
}

// LoadConfig builds a Config from defaults, the YAML file at path and the
// environment. A missing file is only an error when explicit is true.
func LoadConfig(path string, explicit bool) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		case err != nil:
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(raw, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}

	return cfg, nil
}
