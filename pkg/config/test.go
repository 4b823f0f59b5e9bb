package config

func loadTestConfig(cfg *Config) {
	cfg.DatabaseFilePath = ":memory:"
	cfg.LibraryRoot = "./tmp/test-ebooks"
	cfg.ServerHost = "127.0.0.1"
	cfg.UploadDir = "./tmp/test-uploads"
}
