package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
)

type Config struct {
	DatabaseConnectRetryCount int
	DatabaseConnectRetryDelay time.Duration
	DatabaseDebug             bool
	DatabaseFilePath          string
	Hostname                  string
	LibraryRoot               string
	LookupBaseURL             string
	SearchBaseURL             string
	ServerHost                string
	ServerPort                int
	UploadDir                 string
	WorkerProcesses           int

	UserConfig         *UserConfig
	UserConfigFilePath string
}

const environmentENV = "ENVIRONMENT"

func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		Hostname:                  hostname,
		LookupBaseURL:             "https://openlibrary.org",
		SearchBaseURL:             "https://openlibrary.org",
		ServerPort:                3690,
		WorkerProcesses:           2,
	}

	switch os.Getenv(environmentENV) {
	case "development", "":
		loadDevelopmentConfig(cfg)
	case "test":
		loadTestConfig(cfg)
	case "production":
		loadProductionConfig(cfg)
	}

	cfg.UserConfigFilePath = userConfigFilePath()
	cfg.UserConfig, err = loadUserConfig(cfg.UserConfigFilePath)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return cfg, nil
}
