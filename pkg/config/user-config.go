package config

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/segmentio/encoding/json"
)

// UserConfig holds the runtime-tunable settings, persisted as JSON so they
// survive restarts. Everything else comes from the environment.
type UserConfig struct {
	// LookupTimeoutSeconds bounds each call to a metadata provider.
	LookupTimeoutSeconds int `json:"lookup_timeout_seconds"`
	// FlaggedISBNGroups lists ISBN registration groups treated as regional
	// reprints when picking between candidate editions.
	FlaggedISBNGroups []string `json:"flagged_isbn_groups"`
	// FirstCandidateFallback makes title resolution settle for the first
	// search result when no volume-aware match is found.
	FirstCandidateFallback bool `json:"first_candidate_fallback"`
}

func userConfigFilePath() string {
	configDir := os.Getenv("CONFIG_DIRECTORY")
	if configDir == "" {
		configDir = "/config"
	}

	return filepath.Join(configDir, "config.json")
}

func loadUserConfig(configFilePath string) (*UserConfig, error) {
	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// File doesn't exist, return defaults
			return loadDefaultUserConfig(), nil
		}
		return nil, errors.WithStack(err)
	}

	userConfig := loadDefaultUserConfig()
	if err := json.Unmarshal(data, userConfig); err != nil {
		return nil, errors.WithStack(err)
	}

	return userConfig, nil
}

func loadDefaultUserConfig() *UserConfig {
	return &UserConfig{
		LookupTimeoutSeconds: 5,
		FlaggedISBNGroups:    []string{"84"},
	}
}

func saveUserConfigFile(userConfig *UserConfig, userConfigFilePath string) error {
	// Ensure config directory exists.
	if err := os.MkdirAll(filepath.Dir(userConfigFilePath), 0755); err != nil {
		return errors.WithStack(err)
	}

	// Write updated settings to file.
	data, err := json.MarshalIndent(userConfig, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}

	err = os.WriteFile(userConfigFilePath, data, 0644) //nolint:gosec
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
