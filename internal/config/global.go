package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/papercat/config.yml.
type GlobalConfig struct {
	DefaultRoot       string  `yaml:"default_root,omitempty"`
	Mailto            string  `yaml:"mailto,omitempty"`
	OpenAlexAPIKey    string  `yaml:"openalex_api_key,omitempty"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "papercat"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment overrides.
const (
	EnvRoot           = "PAPERCAT_ROOT"
	EnvMailto         = "PAPERCAT_MAILTO"
	EnvOpenAlexAPIKey = "OPENALEX_API_KEY"
	EnvRequestsPerSec = "PAPERCAT_RPS"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/papercat/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.DefaultRoot != "" {
		cfg.DefaultRoot = ExpandPath(cfg.DefaultRoot)
	}
	if cfg.RequestsPerSecond < 0 {
		return nil, fmt.Errorf("parsing global config: requests_per_second must be positive, got %g", cfg.RequestsPerSecond)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

func globalOrEmpty() *GlobalConfig {
	cfg, err := LoadGlobalConfig()
	if err != nil || cfg == nil {
		return &GlobalConfig{}
	}
	return cfg
}

// GetMailto returns the contact address: the environment first, then the
// repository config, then the global config.
func GetMailto(repo *Config) string {
	if v := os.Getenv(EnvMailto); v != "" {
		return v
	}
	if repo != nil && repo.Mailto != "" {
		return repo.Mailto
	}
	return globalOrEmpty().Mailto
}

// GetOpenAlexAPIKey returns the OpenAlex API key from the environment or the
// global config.
func GetOpenAlexAPIKey() string {
	if v := os.Getenv(EnvOpenAlexAPIKey); v != "" {
		return v
	}
	return globalOrEmpty().OpenAlexAPIKey
}

// GetRequestsPerSecond returns the configured per-source request rate, or 0
// to keep each adapter's own default.
func GetRequestsPerSecond() float64 {
	if v := os.Getenv(EnvRequestsPerSec); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil && rps > 0 {
			return rps
		}
	}
	return globalOrEmpty().RequestsPerSecond
}

// ErrNoRepository is returned when no papercat repository can be located.
var ErrNoRepository = errors.New("no papercat repository found")

// FindRoot locates the repository root: PAPERCAT_ROOT when set, else the
// enclosing repository of start, else the global default_root.
func FindRoot(start string) (string, error) {
	if env := os.Getenv(EnvRoot); env != "" {
		root := ExpandPath(env)
		if !IsRepository(root) {
			return "", fmt.Errorf("%w: %s=%s has no %s directory", ErrNoRepository, EnvRoot, env, PapercatDir)
		}
		return root, nil
	}

	if root, err := FindRepository(start); err == nil {
		return root, nil
	}

	if def := globalOrEmpty().DefaultRoot; def != "" {
		if !IsRepository(def) {
			return "", fmt.Errorf("%w: default_root %s has no %s directory", ErrNoRepository, def, PapercatDir)
		}
		return def, nil
	}

	return "", ErrNoRepository
}

// HelpfulConfigMessage returns a helpful message when no repository is found.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No papercat repository found.

Run 'pcat init' to create one here, or create %s to set a default:
  mkdir -p %s
  echo 'default_root: /path/to/your/catalog' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
