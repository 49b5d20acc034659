package config

import "os"

type Config struct {
	ServerPort   string
	CompanyName  string
	RegistryPath string
	MaxFileSize  int64
}

func LoadConfig() *Config {
	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		serverPort = "8080"
	}

	companyName := os.Getenv("COMPANY_NAME")
	if companyName == "" {
		companyName = "Empresa"
	}

	return &Config{
		ServerPort:   serverPort,
		CompanyName:  companyName,
		RegistryPath: os.Getenv("KPI_REGISTRY_PATH"),
		MaxFileSize:  32 * 1024 * 1024, // 32 MB
	}
}
