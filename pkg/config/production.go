package config

import (
	"os"
	"strconv"
)

func loadProductionConfig(cfg *Config) {
	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err == nil {
		cfg.ServerPort = port
	}

	cfg.DatabaseFilePath = "/data/data.sqlite"
	cfg.LibraryRoot = "/data/ebooks"
	cfg.ServerHost = "0.0.0.0"
	cfg.UploadDir = "/data/uploads"

	if v := os.Getenv("DATABASE_FILE_PATH"); v != "" {
		cfg.DatabaseFilePath = v
	}
	if v := os.Getenv("LIBRARY_ROOT"); v != "" {
		cfg.LibraryRoot = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("LOOKUP_BASE_URL"); v != "" {
		cfg.LookupBaseURL = v
	}
	if v := os.Getenv("SEARCH_BASE_URL"); v != "" {
		cfg.SearchBaseURL = v
	}
}
